package jack_test

import (
	"strings"
	"testing"

	"its-hmny.dev/nand2tetris/pkg/jack"
)

func parse(t *testing.T, source string) jack.Class {
	t.Helper()
	parser := jack.NewParser(strings.NewReader(source))
	class, err := parser.Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	return class
}

func TestParseClassVarDecl(t *testing.T) {
	class := parse(t, `
		class Point {
			field int x, y;
			static boolean initialized;
		}
	`)

	if class.Name != "Point" {
		t.Fatalf("expected class name 'Point', got %q", class.Name)
	}
	if class.Fields.Size() != 3 {
		t.Fatalf("expected 3 fields, got %d", class.Fields.Size())
	}

	x, ok := class.Fields.Get("x")
	if !ok || x.VarType != jack.Field || x.DataType.Main != jack.Int {
		t.Fatalf("expected 'x' to be a field of type int, got %+v (found=%v)", x, ok)
	}
	initialized, ok := class.Fields.Get("initialized")
	if !ok || initialized.VarType != jack.Static || initialized.DataType.Main != jack.Bool {
		t.Fatalf("expected 'initialized' to be a static bool, got %+v (found=%v)", initialized, ok)
	}
}

func TestParseSubroutineSignature(t *testing.T) {
	class := parse(t, `
		class Fraction {
			constructor Fraction new(int n, int d) {
				return this;
			}
		}
	`)

	sub, ok := class.Subroutines.Get("new")
	if !ok {
		t.Fatalf("expected subroutine 'new' to be registered")
	}
	if sub.Type != jack.Constructor {
		t.Fatalf("expected a constructor, got %+v", sub.Type)
	}
	if sub.Return.Main != jack.Object || sub.Return.Subtype != "Fraction" {
		t.Fatalf("expected return type 'Fraction', got %+v", sub.Return)
	}
	if len(sub.Arguments) != 2 || sub.Arguments[0].Name != "n" || sub.Arguments[1].Name != "d" {
		t.Fatalf("expected arguments (n, d), got %+v", sub.Arguments)
	}
	if len(sub.Statements) != 1 {
		t.Fatalf("expected a single 'return this;' statement, got %d", len(sub.Statements))
	}
	ret, ok := sub.Statements[0].(jack.ReturnStmt)
	if !ok {
		t.Fatalf("expected a jack.ReturnStmt, got %T", sub.Statements[0])
	}
	if ret.Expr != (jack.VarExpr{Var: "this"}) {
		t.Fatalf("expected 'return this' to lower 'this' to a var expression, got %+v", ret.Expr)
	}
}

func TestParseExpressionIsLeftToRightWithNoPrecedence(t *testing.T) {
	class := parse(t, `
		class Main {
			function void main() {
				var int result;
				let result = 1 + 2 * 3;
				return;
			}
		}
	`)

	main, ok := class.Subroutines.Get("main")
	if !ok {
		t.Fatalf("expected subroutine 'main' to be registered")
	}

	var let jack.LetStmt
	found := false
	for _, stmt := range main.Statements {
		if l, ok := stmt.(jack.LetStmt); ok {
			let, found = l, true
		}
	}
	if !found {
		t.Fatalf("expected a 'let' statement in 'main', got %+v", main.Statements)
	}

	// Jack has no operator precedence, so "1 + 2 * 3" must parse as "(1 + 2) * 3",
	// never as "1 + (2 * 3)".
	top, ok := let.Rhs.(jack.BinaryExpr)
	if !ok {
		t.Fatalf("expected a top level jack.BinaryExpr, got %T", let.Rhs)
	}
	if top.Type != jack.Multiply {
		t.Fatalf("expected the outermost operator to be '*', got %+v", top.Type)
	}
	inner, ok := top.Lhs.(jack.BinaryExpr)
	if !ok || inner.Type != jack.Plus {
		t.Fatalf("expected the left operand to be the '1 + 2' sub-expression, got %+v", top.Lhs)
	}
}

func TestParseArrayAccessAndCalls(t *testing.T) {
	class := parse(t, `
		class Main {
			function void main() {
				var Array a;
				let a[0] = Math.multiply(2, 21);
				do Output.printInt(a[0]);
				return;
			}
		}
	`)

	main, _ := class.Subroutines.Get("main")

	var let jack.LetStmt
	var do jack.DoStmt
	for _, stmt := range main.Statements {
		switch s := stmt.(type) {
		case jack.LetStmt:
			let = s
		case jack.DoStmt:
			do = s
		}
	}

	lhs, ok := let.Lhs.(jack.ArrayExpr)
	if !ok || lhs.Var != "a" {
		t.Fatalf("expected a jack.ArrayExpr indexing 'a', got %+v", let.Lhs)
	}

	call, ok := let.Rhs.(jack.FuncCallExpr)
	if !ok || !call.IsExtCall || call.Var != "Math" || call.FuncName != "multiply" || len(call.Arguments) != 2 {
		t.Fatalf("expected a call to 'Math.multiply' with 2 arguments, got %+v", let.Rhs)
	}

	if !do.FuncCall.IsExtCall || do.FuncCall.Var != "Output" || do.FuncCall.FuncName != "printInt" {
		t.Fatalf("expected 'do' to call 'Output.printInt', got %+v", do.FuncCall)
	}
	arg, ok := do.FuncCall.Arguments[0].(jack.ArrayExpr)
	if !ok || arg.Var != "a" {
		t.Fatalf("expected the call argument to be 'a[0]', got %+v", do.FuncCall.Arguments[0])
	}
}

func TestParseIfElseAndWhile(t *testing.T) {
	class := parse(t, `
		class Main {
			function void main() {
				if (true) {
					let x = 1;
				} else {
					let x = 2;
				}
				while (~done) {
					let x = x + 1;
				}
				return;
			}
		}
	`)

	main, _ := class.Subroutines.Get("main")
	if len(main.Statements) != 3 {
		t.Fatalf("expected 3 statements (if, while, return), got %d: %+v", len(main.Statements), main.Statements)
	}

	ifStmt, ok := main.Statements[0].(jack.IfStmt)
	if !ok {
		t.Fatalf("expected a jack.IfStmt, got %T", main.Statements[0])
	}
	if len(ifStmt.ThenBlock) != 1 || len(ifStmt.ElseBlock) != 1 {
		t.Fatalf("expected both branches to hold a single statement, got then=%d else=%d",
			len(ifStmt.ThenBlock), len(ifStmt.ElseBlock))
	}

	whileStmt, ok := main.Statements[1].(jack.WhileStmt)
	if !ok {
		t.Fatalf("expected a jack.WhileStmt, got %T", main.Statements[1])
	}
	cond, ok := whileStmt.Condition.(jack.UnaryExpr)
	if !ok || cond.Type != jack.BoolNot {
		t.Fatalf("expected the while condition to be '~done', got %+v", whileStmt.Condition)
	}
}

func TestParseBareReturnHasNilExpr(t *testing.T) {
	class := parse(t, `
		class Main {
			function void main() {
				return;
			}
		}
	`)

	main, _ := class.Subroutines.Get("main")
	ret, ok := main.Statements[0].(jack.ReturnStmt)
	if !ok {
		t.Fatalf("expected a jack.ReturnStmt, got %T", main.Statements[0])
	}
	if ret.Expr != nil {
		t.Fatalf("expected a bare 'return;' to carry a nil expression, got %+v", ret.Expr)
	}
}

func TestParseCommentsAreIgnored(t *testing.T) {
	class := parse(t, `
		// A point in 2D space
		class Point {
			/* fields */
			field int x, y; // coordinates

			function void dump() {
				// nothing to do yet
				return;
			}
		}
	`)

	if class.Fields.Size() != 2 {
		t.Fatalf("expected 2 fields, got %d", class.Fields.Size())
	}
	if class.Subroutines.Size() != 1 {
		t.Fatalf("expected 1 subroutine, got %d", class.Subroutines.Size())
	}
}
