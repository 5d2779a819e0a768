package jack

import (
	"fmt"
	"io"
	"os"
	"strings"

	pc "github.com/prataprc/goparsec"
)

// Top level object, will generate the traversable AST based on the input plus the PCs below.
var ast = pc.NewAST("jack_program", 0)

// ----------------------------------------------------------------------------
// Recursive grammar trampolines
//
// The Jack grammar is genuinely recursive in two places: an 'expression' can contain a
// parenthesized sub-expression (or subroutine call arguments, or an array index) which in
// turn needs to parse a full 'expression' again, and a 'term' can itself be the operand of
// an unary operator (e.g. '~(x & y)'). Go doesn't allow a package level var to depend on
// itself (directly or through other vars), so 'pExpr' and 'pTerm' below are declared as
// plain functions with a stable identity: everyone else in this file references them by
// name, while the actual grammar they run is plugged in (once) from 'init()', by which
// point every other combinator has already been constructed.
var (
	pExprImpl pc.Parser
	pTermImpl pc.Parser
)

func pExpr(s pc.Scanner) (pc.ParsecNode, pc.Scanner) { return pExprImpl(s) }
func pTerm(s pc.Scanner) (pc.ParsecNode, pc.Scanner) { return pTermImpl(s) }

func init() {
	pExprImpl = pExprReal
	pTermImpl = pTermReal
}

// ----------------------------------------------------------------------------
// Class level constructs

var (
	pClass = ast.And("class_decl", nil,
		ast.Kleene("header", nil, pComment),
		pc.Atom("class", "CLASS"), pIdent, pLBrace,
		ast.Kleene("class_vars", nil, ast.OrdChoice("class_var_item", nil, pClassVarDec, pComment)),
		ast.Kleene("subroutines", nil, ast.OrdChoice("subroutine_item", nil, pSubroutineDec, pComment)),
		pRBrace,
	)

	// A class level (static or field) variable declaration, e.g. "field int x, y;"
	pClassVarDec = ast.And("class_var_decl", nil,
		ast.OrdChoice("storage", nil, pc.Atom("static", "STATIC"), pc.Atom("field", "FIELD")),
		pType, pIdent, ast.Kleene("more_names", nil, ast.And("more_name", nil, pComma, pIdent)), pSemi,
	)

	pSubroutineDec = ast.And("subroutine_decl", nil,
		ast.OrdChoice("kind", nil, pc.Atom("constructor", "CONSTRUCTOR"), pc.Atom("function", "FUNCTION"), pc.Atom("method", "METHOD")),
		pReturnType, pIdent,
		pLParen, pParamList, pRParen,
		pLBrace,
		ast.Kleene("locals", nil, ast.OrdChoice("local_item", nil, pVarDec, pComment)),
		ast.Kleene("body", nil, ast.OrdChoice("stmt_item", nil, pStatement, pComment)),
		pRBrace,
	)

	pParam     = ast.And("param", nil, pType, pIdent)
	pParamList = ast.Kleene("param_list", nil, pParam, pComma)

	// A subroutine-local variable declaration, e.g. "var int i, j;"
	pVarDec = ast.And("var_decl", nil, pc.Atom("var", "VAR"), pType, pIdent, ast.Kleene("more_names", nil, ast.And("more_name", nil, pComma, pIdent)), pSemi)

	// Single and multi line comments, allowed pretty much everywhere a declaration/statement is.
	pComment = ast.OrdChoice("comment", nil,
		ast.And("sl_comment", nil, pc.Atom("//", "//"), pc.Token(`(?m).*$`, "COMMENT")),
		ast.And("ml_comment", nil, pc.Token(`/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`, "COMMENT")),
	)
)

// ----------------------------------------------------------------------------
// Statements

var (
	pStatement = ast.OrdChoice("statement", nil, pLetStmt, pIfStmt, pWhileStmt, pDoStmt, pReturnStmt)

	pArrayIndex = ast.And("array_index", nil, pLBracket, pExpr, pRBracket)
	pLetStmt    = ast.And("let_stmt", nil, pc.Atom("let", "LET"), pIdent, pc.Maybe(nil, pArrayIndex), pAssign, pExpr, pSemi)

	pElseBlock = ast.And("else_block", nil, pc.Atom("else", "ELSE"), pLBrace,
		ast.Kleene("stmts", nil, ast.OrdChoice("item", nil, pStatement, pComment)), pRBrace)
	pIfStmt = ast.And("if_stmt", nil,
		pc.Atom("if", "IF"), pLParen, pExpr, pRParen, pLBrace,
		ast.Kleene("then_block", nil, ast.OrdChoice("item", nil, pStatement, pComment)), pRBrace,
		pc.Maybe(nil, pElseBlock),
	)

	pWhileStmt = ast.And("while_stmt", nil,
		pc.Atom("while", "WHILE"), pLParen, pExpr, pRParen, pLBrace,
		ast.Kleene("block", nil, ast.OrdChoice("item", nil, pStatement, pComment)), pRBrace,
	)

	pDoStmt     = ast.And("do_stmt", nil, pc.Atom("do", "DO"), pSubroutineCall, pSemi)
	pReturnStmt = ast.And("return_stmt", nil, pc.Atom("return", "RETURN"), pc.Maybe(nil, pExpr), pSemi)
)

// ----------------------------------------------------------------------------
// Subroutine calls and expressions

var (
	pQualifier      = ast.And("qualifier", nil, pIdent, pDot)
	pSubroutineCall = ast.And("subroutine_call", nil, pc.Maybe(nil, pQualifier), pIdent, pLParen, pExprList, pRParen)
	pExprList       = ast.Kleene("expr_list", nil, pExpr, pComma)

	// Jack has no operator precedence: an expression is a term followed by zero or more
	// (operator, term) pairs, evaluated strictly left to right (parens force ordering).
	pOp      = ast.OrdChoice("op", nil, pPlus, pMinus, pStar, pSlash, pAmp, pPipe, pLt, pGt, pEq)
	pOpTerm  = ast.And("op_term", nil, pOp, pTerm)
	pExprReal = ast.And("expression", nil, pTerm, ast.Kleene("expr_tail", nil, pOpTerm))

	pArrayTerm = ast.And("array_term", nil, pIdent, pLBracket, pExpr, pRBracket)
	pParenTerm = ast.And("paren_term", nil, pLParen, pExpr, pRParen)
	pUnaryTerm = ast.And("unary_term", nil, ast.OrdChoice("unary_op", nil, pc.Atom("-", "NEG"), pc.Atom("~", "NOT")), pTerm)
	pVarTerm   = ast.And("var_term", nil, pIdent)

	pKeywordConst = ast.OrdChoice("keyword_const", nil,
		pc.Atom("true", "TRUE"), pc.Atom("false", "FALSE"), pc.Atom("null", "NULL"), pc.Atom("this", "THIS"),
	)
	pStringLit = pc.Token(`"(?:\\.|[^"\\])*"`, "STRING")

	// Order matters: keyword constants and literals must be tried before the identifier based
	// alternatives (an identifier-looking keyword like 'true' would otherwise be swallowed by
	// 'pVarTerm'), and 'array_term'/'subroutine_call' must be tried before the bare 'var_term'
	// (a bare identifier is a prefix of both).
	pTermReal = ast.OrdChoice("term", nil,
		pc.Int(), pStringLit, pKeywordConst,
		pArrayTerm, pSubroutineCall, pParenTerm, pUnaryTerm, pVarTerm,
	)
)

// ----------------------------------------------------------------------------
// Tokens and punctuation

var (
	// Generic Identifier parser. An identifier cannot begin with a leading digit.
	pIdent = pc.Token(`[A-Za-z_][0-9a-zA-Z_]*`, "IDENT")

	pDot      = pc.Atom(".", "DOT")
	pSemi     = pc.Atom(";", "SEMI")
	pComma    = pc.Atom(",", "COMMA")
	pAssign   = pc.Atom("=", "ASSIGN")
	pLBrace   = pc.Atom("{", "LBRACE")
	pRBrace   = pc.Atom("}", "RBRACE")
	pLParen   = pc.Atom("(", "LPAREN")
	pRParen   = pc.Atom(")", "RPAREN")
	pLBracket = pc.Atom("[", "LBRACKET")
	pRBracket = pc.Atom("]", "RBRACKET")

	pPlus  = pc.Atom("+", "PLUS")
	pMinus = pc.Atom("-", "MINUS")
	pStar  = pc.Atom("*", "STAR")
	pSlash = pc.Atom("/", "SLASH")
	pAmp   = pc.Atom("&", "AMP")
	pPipe  = pc.Atom("|", "PIPE")
	pLt    = pc.Atom("<", "LT")
	pGt    = pc.Atom(">", "GT")
	pEq    = pc.Atom("=", "EQ")

	// A type is either a primitive or a (forward-declared) class name.
	pPrimitiveType = ast.OrdChoice("primitive_type", nil, pc.Atom("int", "INT"), pc.Atom("char", "CHAR"), pc.Atom("boolean", "BOOLEAN"))
	pType          = ast.OrdChoice("type", nil, pPrimitiveType, pIdent)
	pReturnType    = ast.OrdChoice("return_type", nil, pc.Atom("void", "VOID"), pType)
)

// ----------------------------------------------------------------------------
// Jack Parser

// This section defines the Parser for the nand2tetris Jack language.
//
// It uses parser combinator(s) to obtain the AST from the source code (the latter can be provided)
// in multiple ways using a generic io.Reader, the library reads up the feature flags (as env vars):
// - PARSEC_DEBUG: Verbose logging to inspect which of the PCs gets triggered and match
// - EXPORT_AST:   Exports in the DEBUG_FOLDER a Graphviz representation of the AST
// - PRINT_AST:    Print on the stdout a textual representation of the AST
type Parser struct{ reader io.Reader }

// Initializes and returns to the caller a brand new 'Parser' struct.
// Requires the argument io.Reader 'r' to be valid and usable.
func NewParser(r io.Reader) Parser {
	return Parser{reader: r}
}

// Parser entrypoint divides the 2 phases of the parsing pipeline
// Text --> AST: This step is done using PCs and returns a generic traversable AST
// AST --> IR: This step is done by traversing the AST and extracting the 'jack.Class'
func (p *Parser) Parse() (Class, error) {
	content, err := io.ReadAll(p.reader)
	if err != nil {
		return Class{}, fmt.Errorf("cannot read from 'io.Reader': %s", err)
	}

	root, success := p.FromSource(content)
	if !success {
		return Class{}, fmt.Errorf("failed to parse AST from input content")
	}

	return p.FromAST(root)
}

// Scans the textual input stream coming from the 'reader' method and returns a traversable AST
// (Abstract Syntax Tree) that can be eventually visited to extract/transform the info available.
func (p *Parser) FromSource(source []byte) (pc.Queryable, bool) {

	// Feature flag: Enable 'goparsec' library's debug logs
	if os.Getenv("PARSEC_DEBUG") != "" {
		ast.SetDebug()
	}

	// We generate the traversable Abstract Syntax Tree from the source content
	root, _ := ast.Parsewith(pClass, pc.NewScanner(source))

	// Feature flag: Enables export of the AST as Dot file (debug.ast.dot)
	if os.Getenv("EXPORT_AST") != "" {
		file, _ := os.Create(fmt.Sprintf("%s/debug.ast.dot", os.Getenv("DEBUG_FOLDER")))
		defer file.Close()

		file.Write([]byte(ast.Dotstring("\"Jack AST\"")))
	}

	// Feature flag: Enables pretty printing of the AST on the console
	if os.Getenv("PRINT_AST") != "" {
		ast.Prettyprint()
	}

	return root, root != nil
}

// ----------------------------------------------------------------------------
// AST -> IR conversion

// This function takes the root node of the raw parsed AST and does a DFS on it parsing
// one by one each subtree and returning a 'jack.Class' that can be used as in-memory and
// type-safe AST not dependent on the parsing library used.
func (p *Parser) FromAST(root pc.Queryable) (Class, error) {
	if root.GetName() != "class_decl" {
		return Class{}, fmt.Errorf("expected node 'class_decl', found %s", root.GetName())
	}

	children := root.GetChildren()
	if len(children) != 7 {
		return Class{}, fmt.Errorf("expected 'class_decl' with 7 children, got %d", len(children))
	}

	class := Class{Name: children[2].GetValue()}

	for _, node := range children[4].GetChildren() {
		switch node.GetName() {
		case "class_var_decl":
			vars, err := p.HandleClassVarDecl(node)
			if err != nil {
				return Class{}, err
			}
			for _, variable := range vars {
				class.Fields.Set(variable.Name, variable)
			}
		case "sl_comment", "ml_comment":
			continue
		default:
			return Class{}, fmt.Errorf("unrecognized node '%s' in class body", node.GetName())
		}
	}

	for _, node := range children[5].GetChildren() {
		switch node.GetName() {
		case "subroutine_decl":
			subroutine, err := p.HandleSubroutineDecl(node)
			if err != nil {
				return Class{}, err
			}
			class.Subroutines.Set(subroutine.Name, subroutine)
		case "sl_comment", "ml_comment":
			continue
		default:
			return Class{}, fmt.Errorf("unrecognized node '%s' in class body", node.GetName())
		}
	}

	return class, nil
}

// Specialized function to convert a "class_var_decl" node to a list of 'jack.Variable'.
func (p *Parser) HandleClassVarDecl(node pc.Queryable) ([]Variable, error) {
	children := node.GetChildren()
	if len(children) != 5 {
		return nil, fmt.Errorf("expected 'class_var_decl' with 5 children, got %d", len(children))
	}

	varType, err := HandleVarType(children[0])
	if err != nil {
		return nil, err
	}

	dataType, err := HandleDataType(children[1])
	if err != nil {
		return nil, err
	}

	names := []string{children[2].GetValue()}
	for _, name := range children[3].GetChildren() {
		names = append(names, name.GetChildren()[1].GetValue())
	}

	variables := make([]Variable, 0, len(names))
	for _, name := range names {
		variables = append(variables, Variable{Name: name, VarType: varType, DataType: dataType})
	}
	return variables, nil
}

// Maps a "storage" node (the 'static'/'field' keyword) to its 'jack.VarType' counterpart.
func HandleVarType(node pc.Queryable) (VarType, error) {
	switch node.GetName() {
	case "STATIC":
		return Static, nil
	case "FIELD":
		return Field, nil
	default:
		return "", fmt.Errorf("unrecognized storage class '%s'", node.GetName())
	}
}

// Maps a type node (resolved down to its leaf token) to its 'jack.DataType' counterpart.
func HandleDataType(node pc.Queryable) (DataType, error) {
	switch node.GetName() {
	case "INT":
		return DataType{Main: Int}, nil
	case "CHAR":
		return DataType{Main: Char}, nil
	case "BOOLEAN":
		return DataType{Main: Bool}, nil
	case "VOID":
		return DataType{Main: Void}, nil
	case "IDENT":
		return DataType{Main: Object, Subtype: node.GetValue()}, nil
	default:
		return DataType{}, fmt.Errorf("unrecognized data type node '%s'", node.GetName())
	}
}

// Specialized function to convert a "subroutine_decl" node to a 'jack.Subroutine'.
func (p *Parser) HandleSubroutineDecl(node pc.Queryable) (Subroutine, error) {
	children := node.GetChildren()
	if len(children) != 10 {
		return Subroutine{}, fmt.Errorf("expected 'subroutine_decl' with 10 children, got %d", len(children))
	}

	var kind SubroutineType
	switch children[0].GetName() {
	case "CONSTRUCTOR":
		kind = Constructor
	case "FUNCTION":
		kind = Function
	case "METHOD":
		kind = Method
	default:
		return Subroutine{}, fmt.Errorf("unrecognized subroutine kind '%s'", children[0].GetName())
	}

	returnType, err := HandleDataType(children[1])
	if err != nil {
		return Subroutine{}, err
	}

	arguments := []Variable{}
	for _, param := range children[4].GetChildren() {
		pChildren := param.GetChildren()
		if len(pChildren) != 2 {
			return Subroutine{}, fmt.Errorf("expected 'param' with 2 children, got %d", len(pChildren))
		}
		dataType, err := HandleDataType(pChildren[0])
		if err != nil {
			return Subroutine{}, err
		}
		arguments = append(arguments, Variable{Name: pChildren[1].GetValue(), VarType: Parameter, DataType: dataType})
	}

	statements := []Statement{}
	for _, local := range children[7].GetChildren() {
		switch local.GetName() {
		case "var_decl":
			vars, err := p.HandleVarDecl(local)
			if err != nil {
				return Subroutine{}, err
			}
			statements = append(statements, VarStmt{Vars: vars})
		case "sl_comment", "ml_comment":
			continue
		default:
			return Subroutine{}, fmt.Errorf("unrecognized node '%s' in subroutine locals", local.GetName())
		}
	}

	body, err := p.collectStatements(children[8].GetChildren())
	if err != nil {
		return Subroutine{}, err
	}
	statements = append(statements, body...)

	return Subroutine{Name: children[2].GetValue(), Type: kind, Return: returnType, Arguments: arguments, Statements: statements}, nil
}

// Specialized function to convert a "var_decl" node to a list of 'jack.Variable'.
func (p *Parser) HandleVarDecl(node pc.Queryable) ([]Variable, error) {
	children := node.GetChildren()
	if len(children) != 5 {
		return nil, fmt.Errorf("expected 'var_decl' with 5 children, got %d", len(children))
	}

	dataType, err := HandleDataType(children[1])
	if err != nil {
		return nil, err
	}

	names := []string{children[2].GetValue()}
	for _, name := range children[3].GetChildren() {
		names = append(names, name.GetChildren()[1].GetValue())
	}

	variables := make([]Variable, 0, len(names))
	for _, name := range names {
		variables = append(variables, Variable{Name: name, VarType: Local, DataType: dataType})
	}
	return variables, nil
}

// Shared helper to convert a list of "*_stmt"/comment nodes (a subroutine body, a 'then'/'else'
// block or a 'while' block) into an ordered list of 'jack.Statement'.
func (p *Parser) collectStatements(nodes []pc.Queryable) ([]Statement, error) {
	statements := []Statement{}
	for _, node := range nodes {
		switch node.GetName() {
		case "sl_comment", "ml_comment":
			continue
		default:
			stmt, err := p.HandleStatement(node)
			if err != nil {
				return nil, err
			}
			statements = append(statements, stmt)
		}
	}
	return statements, nil
}

// Specialized function to convert a generic statement node to its 'jack.Statement' counterpart.
func (p *Parser) HandleStatement(node pc.Queryable) (Statement, error) {
	switch node.GetName() {
	case "let_stmt":
		return p.HandleLetStmt(node)
	case "if_stmt":
		return p.HandleIfStmt(node)
	case "while_stmt":
		return p.HandleWhileStmt(node)
	case "do_stmt":
		return p.HandleDoStmt(node)
	case "return_stmt":
		return p.HandleReturnStmt(node)
	default:
		return nil, fmt.Errorf("unrecognized statement node '%s'", node.GetName())
	}
}

// Specialized function to convert a "let_stmt" node to a 'jack.LetStmt'.
func (p *Parser) HandleLetStmt(node pc.Queryable) (Statement, error) {
	children := node.GetChildren()
	if len(children) != 6 {
		return nil, fmt.Errorf("expected 'let_stmt' with 6 children, got %d", len(children))
	}

	varName := children[1].GetValue()

	var lhs Expression = VarExpr{Var: varName}
	if children[2].GetName() == "array_index" {
		idxChildren := children[2].GetChildren()
		if len(idxChildren) != 3 {
			return nil, fmt.Errorf("expected 'array_index' with 3 children, got %d", len(idxChildren))
		}
		index, err := p.HandleExpression(idxChildren[1])
		if err != nil {
			return nil, err
		}
		lhs = ArrayExpr{Var: varName, Index: index}
	}

	rhs, err := p.HandleExpression(children[4])
	if err != nil {
		return nil, err
	}

	return LetStmt{Lhs: lhs, Rhs: rhs}, nil
}

// Specialized function to convert an "if_stmt" node to a 'jack.IfStmt'.
func (p *Parser) HandleIfStmt(node pc.Queryable) (Statement, error) {
	children := node.GetChildren()
	if len(children) != 8 {
		return nil, fmt.Errorf("expected 'if_stmt' with 8 children, got %d", len(children))
	}

	condition, err := p.HandleExpression(children[2])
	if err != nil {
		return nil, err
	}

	thenBlock, err := p.collectStatements(children[5].GetChildren())
	if err != nil {
		return nil, err
	}

	var elseBlock []Statement
	if children[7].GetName() == "else_block" {
		elseChildren := children[7].GetChildren()
		if len(elseChildren) != 4 {
			return nil, fmt.Errorf("expected 'else_block' with 4 children, got %d", len(elseChildren))
		}
		elseBlock, err = p.collectStatements(elseChildren[2].GetChildren())
		if err != nil {
			return nil, err
		}
	}

	return IfStmt{Condition: condition, ThenBlock: thenBlock, ElseBlock: elseBlock}, nil
}

// Specialized function to convert a "while_stmt" node to a 'jack.WhileStmt'.
func (p *Parser) HandleWhileStmt(node pc.Queryable) (Statement, error) {
	children := node.GetChildren()
	if len(children) != 7 {
		return nil, fmt.Errorf("expected 'while_stmt' with 7 children, got %d", len(children))
	}

	condition, err := p.HandleExpression(children[2])
	if err != nil {
		return nil, err
	}

	block, err := p.collectStatements(children[5].GetChildren())
	if err != nil {
		return nil, err
	}

	return WhileStmt{Condition: condition, Block: block}, nil
}

// Specialized function to convert a "do_stmt" node to a 'jack.DoStmt'.
func (p *Parser) HandleDoStmt(node pc.Queryable) (Statement, error) {
	children := node.GetChildren()
	if len(children) != 3 {
		return nil, fmt.Errorf("expected 'do_stmt' with 3 children, got %d", len(children))
	}

	call, err := p.HandleSubroutineCall(children[1])
	if err != nil {
		return nil, err
	}

	return DoStmt{FuncCall: call}, nil
}

// Specialized function to convert a "return_stmt" node to a 'jack.ReturnStmt'.
func (p *Parser) HandleReturnStmt(node pc.Queryable) (Statement, error) {
	children := node.GetChildren()
	if len(children) != 3 {
		return nil, fmt.Errorf("expected 'return_stmt' with 3 children, got %d", len(children))
	}

	if children[1].GetName() != "expression" {
		return ReturnStmt{Expr: nil}, nil
	}

	expr, err := p.HandleExpression(children[1])
	if err != nil {
		return nil, err
	}
	return ReturnStmt{Expr: expr}, nil
}

// Specialized function to convert a "subroutine_call" node to a 'jack.FuncCallExpr'.
func (p *Parser) HandleSubroutineCall(node pc.Queryable) (FuncCallExpr, error) {
	children := node.GetChildren()
	if len(children) != 5 {
		return FuncCallExpr{}, fmt.Errorf("expected 'subroutine_call' with 5 children, got %d", len(children))
	}

	arguments := []Expression{}
	for _, argNode := range children[3].GetChildren() {
		arg, err := p.HandleExpression(argNode)
		if err != nil {
			return FuncCallExpr{}, err
		}
		arguments = append(arguments, arg)
	}

	if children[0].GetName() == "qualifier" {
		qChildren := children[0].GetChildren()
		if len(qChildren) != 2 {
			return FuncCallExpr{}, fmt.Errorf("expected 'qualifier' with 2 children, got %d", len(qChildren))
		}
		return FuncCallExpr{
			IsExtCall: true, Var: qChildren[0].GetValue(),
			FuncName: children[1].GetValue(), Arguments: arguments,
		}, nil
	}

	return FuncCallExpr{IsExtCall: false, FuncName: children[1].GetValue(), Arguments: arguments}, nil
}

// Specialized function to convert an "expression" node to a 'jack.Expression'. Since Jack has
// no operator precedence, the (operator, term) tail is folded left-to-right into nested
// 'jack.BinaryExpr' values, e.g. "1 + 2 * 3" becomes "(1 + 2) * 3".
func (p *Parser) HandleExpression(node pc.Queryable) (Expression, error) {
	if node.GetName() != "expression" {
		return nil, fmt.Errorf("expected node 'expression', got %s", node.GetName())
	}

	children := node.GetChildren()
	if len(children) != 2 {
		return nil, fmt.Errorf("expected 'expression' with 2 children, got %d", len(children))
	}

	lhs, err := p.HandleTerm(children[0])
	if err != nil {
		return nil, err
	}

	for _, opTerm := range children[1].GetChildren() {
		otChildren := opTerm.GetChildren()
		if len(otChildren) != 2 {
			return nil, fmt.Errorf("expected 'op_term' with 2 children, got %d", len(otChildren))
		}

		opType, err := HandleExprType(otChildren[0])
		if err != nil {
			return nil, err
		}

		rhs, err := p.HandleTerm(otChildren[1])
		if err != nil {
			return nil, err
		}

		lhs = BinaryExpr{Type: opType, Lhs: lhs, Rhs: rhs}
	}

	return lhs, nil
}

// Maps an "op" leaf node to its 'jack.ExprType' counterpart.
func HandleExprType(node pc.Queryable) (ExprType, error) {
	switch node.GetName() {
	case "PLUS":
		return Plus, nil
	case "MINUS":
		return Minus, nil
	case "STAR":
		return Multiply, nil
	case "SLASH":
		return Divide, nil
	case "AMP":
		return BoolAnd, nil
	case "PIPE":
		return BoolOr, nil
	case "LT":
		return LessThan, nil
	case "GT":
		return GreatThan, nil
	case "EQ":
		return Equal, nil
	default:
		return "", fmt.Errorf("unrecognized operator node '%s'", node.GetName())
	}
}

// Specialized function to convert a "term" node (already collapsed to its matched alternative
// by the underlying 'OrdChoice') into a 'jack.Expression'.
func (p *Parser) HandleTerm(node pc.Queryable) (Expression, error) {
	switch node.GetName() {
	case "INT":
		return LiteralExpr{Type: DataType{Main: Int}, Value: node.GetValue()}, nil

	case "STRING":
		return LiteralExpr{Type: DataType{Main: String}, Value: strings.Trim(node.GetValue(), `"`)}, nil

	case "TRUE", "FALSE":
		return LiteralExpr{Type: DataType{Main: Bool}, Value: node.GetValue()}, nil

	case "NULL":
		return LiteralExpr{Type: DataType{Main: Object}, Value: "null"}, nil

	case "THIS":
		return VarExpr{Var: "this"}, nil

	case "var_term":
		children := node.GetChildren()
		if len(children) != 1 {
			return nil, fmt.Errorf("expected 'var_term' with 1 child, got %d", len(children))
		}
		return VarExpr{Var: children[0].GetValue()}, nil

	case "array_term":
		children := node.GetChildren()
		if len(children) != 4 {
			return nil, fmt.Errorf("expected 'array_term' with 4 children, got %d", len(children))
		}
		index, err := p.HandleExpression(children[2])
		if err != nil {
			return nil, err
		}
		return ArrayExpr{Var: children[0].GetValue(), Index: index}, nil

	case "subroutine_call":
		return p.HandleSubroutineCall(node)

	case "paren_term":
		children := node.GetChildren()
		if len(children) != 3 {
			return nil, fmt.Errorf("expected 'paren_term' with 3 children, got %d", len(children))
		}
		return p.HandleExpression(children[1])

	case "unary_term":
		children := node.GetChildren()
		if len(children) != 2 {
			return nil, fmt.Errorf("expected 'unary_term' with 2 children, got %d", len(children))
		}
		rhs, err := p.HandleTerm(children[1])
		if err != nil {
			return nil, err
		}

		switch children[0].GetName() {
		case "NEG":
			return UnaryExpr{Type: Negation, Rhs: rhs}, nil
		case "NOT":
			return UnaryExpr{Type: BoolNot, Rhs: rhs}, nil
		default:
			return nil, fmt.Errorf("unrecognized unary operator '%s'", children[0].GetName())
		}

	default:
		return nil, fmt.Errorf("unrecognized term node '%s'", node.GetName())
	}
}
