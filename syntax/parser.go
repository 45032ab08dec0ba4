package syntax

import (
	"fmt"

	"hush/ast"
	"hush/token"
)

// ParseError reports a control-parser syntax error (spec §7, "Syntax
// error" row): the command is discarded and $? is set to 1, but the shell
// itself keeps running.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

// ErrUnexpectedEOF is returned by Parse when a multiline construct (if/for/
// while) was left unterminated at end of input (spec §7: "unclosed
// multiline construct on EOF").
var ErrUnexpectedEOF = &ParseError{Msg: "syntax error: unexpected end of file"}

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) cur() Token { return p.toks[p.pos] }

func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// keywordHere reports the reserved-word token of the current position, if
// the current token is a LIT matching a keyword.
func (p *parser) keywordHere() (token.Token, bool) {
	t := p.cur()
	if t.Kind != token.LIT {
		return token.ILLEGAL, false
	}
	kw, ok := token.Keywords[t.Text]
	return kw, ok
}

func (p *parser) atStop(stop map[token.Token]bool) bool {
	if p.cur().Kind == token.EOF {
		return true
	}
	if kw, ok := p.keywordHere(); ok && stop[kw] {
		return true
	}
	return false
}

func (p *parser) expectKeyword(kw token.Token) error {
	got, ok := p.keywordHere()
	if !ok || got != kw {
		return &ParseError{Msg: fmt.Sprintf("syntax error: expected %q", kw)}
	}
	p.advance()
	return nil
}

// Parse turns a splitter token stream into a Line: a sequence of
// ";"-separated segments, each a &&/|| chain of pipelines or control-flow
// blocks (spec §4.4).
func Parse(toks []Token) (*ast.Line, error) {
	p := &parser{toks: toks}
	line, err := p.parseLine(nil)
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != token.EOF {
		if _, ok := p.keywordHere(); ok {
			return nil, ErrUnexpectedEOF
		}
		return nil, &ParseError{Msg: "syntax error near unexpected token"}
	}
	return line, nil
}

func (p *parser) parseLine(stop map[token.Token]bool) (*ast.Line, error) {
	line := &ast.Line{}
	for {
		// Empty segments (";" right after then/do/else, or ";;") are skipped.
		for p.cur().Kind == token.SEMICOLON {
			p.advance()
		}
		if p.atStop(stop) {
			return line, nil
		}
		seg, err := p.parseSegment(stop)
		if err != nil {
			return nil, err
		}
		line.Segments = append(line.Segments, seg)
		if p.cur().Kind == token.SEMICOLON {
			p.advance()
			continue
		}
		return line, nil
	}
}

func (p *parser) parseSegment(stop map[token.Token]bool) (ast.Segment, error) {
	chain, err := p.parseChain(stop)
	if err != nil {
		return ast.Segment{}, err
	}
	return ast.Segment{Chain: chain}, nil
}

func (p *parser) parseChain(stop map[token.Token]bool) (*ast.Chain, error) {
	chain := &ast.Chain{}
	op := ast.ChainNone
	for {
		link, err := p.parseChainElement(stop, op)
		if err != nil {
			return nil, err
		}
		chain.Links = append(chain.Links, link)
		switch p.cur().Kind {
		case token.AND_AND:
			p.advance()
			op = ast.ChainAnd
			continue
		case token.OR_OR:
			p.advance()
			op = ast.ChainOr
			continue
		case token.BACKGRND:
			p.advance()
			chain.Background = true
		}
		return chain, nil
	}
}

func (p *parser) parseChainElement(stop map[token.Token]bool, op ast.ChainOp) (ast.ChainLink, error) {
	if kw, ok := p.keywordHere(); ok && (kw == token.IF || kw == token.FOR || kw == token.WHILE) {
		block, err := p.parseBlock()
		if err != nil {
			return ast.ChainLink{}, err
		}
		return ast.ChainLink{Op: op, Block: block}, nil
	}
	pipeline, err := p.parsePipeline(stop)
	if err != nil {
		return ast.ChainLink{}, err
	}
	return ast.ChainLink{Op: op, Pipeline: pipeline}, nil
}

func (p *parser) parsePipeline(stop map[token.Token]bool) (*ast.Pipeline, error) {
	pipeline := &ast.Pipeline{}
	for {
		cmd, err := p.parseCommand(stop)
		if err != nil {
			return nil, err
		}
		pipeline.Commands = append(pipeline.Commands, cmd)
		if p.cur().Kind == token.PIPE {
			p.advance()
			continue
		}
		return pipeline, nil
	}
}

func isCommandStopper(k token.Token) bool {
	switch k {
	case token.SEMICOLON, token.AND_AND, token.OR_OR, token.PIPE, token.BACKGRND, token.EOF:
		return true
	}
	return false
}

func (p *parser) parseCommand(stop map[token.Token]bool) (*ast.Command, error) {
	cmd := &ast.Command{}
	for {
		if p.atStop(stop) || isCommandStopper(p.cur().Kind) {
			if len(cmd.Args) == 0 && len(cmd.Redirs) == 0 {
				return nil, &ParseError{Msg: "syntax error: unexpected token"}
			}
			return cmd, nil
		}
		t := p.cur()
		switch t.Kind {
		case token.LIT:
			cmd.Args = append(cmd.Args, t.Text)
			p.advance()
		case token.LSS, token.GTR, token.SHR, token.RDR_ERR, token.RDR_ERR_APP, token.RDR_BOTH, token.HEREDOC:
			p.advance()
			target := p.cur()
			if target.Kind != token.LIT {
				return nil, &ParseError{Msg: "syntax error: redirection needs a target"}
			}
			p.advance()
			cmd.Redirs = append(cmd.Redirs, ast.Redirect{Op: redirOpFor(t.Kind), Target: target.Text})
		default:
			return nil, &ParseError{Msg: "syntax error: unexpected operator"}
		}
	}
}

func redirOpFor(k token.Token) ast.RedirOp {
	switch k {
	case token.LSS:
		return ast.RedirIn
	case token.GTR:
		return ast.RedirOut
	case token.SHR:
		return ast.RedirAppend
	case token.RDR_ERR:
		return ast.RedirErr
	case token.RDR_ERR_APP:
		return ast.RedirErrApp
	case token.RDR_BOTH:
		return ast.RedirBoth
	case token.HEREDOC:
		return ast.RedirHeredoc
	}
	panic("unreachable")
}

var stopThen = map[token.Token]bool{token.THEN: true}
var stopElseElifFi = map[token.Token]bool{token.ELSE: true, token.ELIF: true, token.FI: true}
var stopFi = map[token.Token]bool{token.FI: true}
var stopDo = map[token.Token]bool{token.DO: true}
var stopDone = map[token.Token]bool{token.DONE: true}

func (p *parser) parseBlock() (*ast.Block, error) {
	kw, _ := p.keywordHere()
	switch kw {
	case token.IF:
		p.advance()
		ifc, err := p.parseIfBody()
		if err != nil {
			return nil, err
		}
		return &ast.Block{If: ifc}, nil
	case token.WHILE:
		p.advance()
		wc, err := p.parseWhileBody()
		if err != nil {
			return nil, err
		}
		return &ast.Block{While: wc}, nil
	case token.FOR:
		p.advance()
		fc, err := p.parseForBody()
		if err != nil {
			return nil, err
		}
		return &ast.Block{For: fc}, nil
	}
	panic("unreachable")
}

// parseIfBody parses everything after the opening "if" (or, recursively,
// after an "elif" acting in the same role), per spec §4.4.
func (p *parser) parseIfBody() (*ast.IfClause, error) {
	cond, err := p.parseLine(stopThen)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(token.THEN); err != nil {
		return nil, err
	}
	then, err := p.parseLine(stopElseElifFi)
	if err != nil {
		return nil, err
	}
	ifc := &ast.IfClause{Cond: cond, Then: then}
	kw, _ := p.keywordHere()
	switch kw {
	case token.FI:
		p.advance()
		return ifc, nil
	case token.ELSE:
		p.advance()
		elseLine, err := p.parseLine(stopFi)
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword(token.FI); err != nil {
			return nil, err
		}
		ifc.Else = elseLine
		return ifc, nil
	case token.ELIF:
		p.advance()
		inner, err := p.parseIfBody()
		if err != nil {
			return nil, err
		}
		ifc.Else = &ast.Line{Segments: []ast.Segment{{Chain: &ast.Chain{
			Links: []ast.ChainLink{{Block: &ast.Block{If: inner}}},
		}}}}
		return ifc, nil
	}
	return nil, ErrUnexpectedEOF
}

func (p *parser) parseWhileBody() (*ast.WhileClause, error) {
	cond, err := p.parseLine(stopDo)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseLine(stopDone)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(token.DONE); err != nil {
		return nil, err
	}
	return &ast.WhileClause{Cond: cond, Body: body}, nil
}

func (p *parser) parseForBody() (*ast.ForClause, error) {
	varTok := p.cur()
	if varTok.Kind != token.LIT {
		return nil, &ParseError{Msg: "syntax error: expected loop variable after for"}
	}
	p.advance()
	if err := p.expectKeyword(token.IN); err != nil {
		return nil, err
	}
	var words []string
	for {
		if kw, ok := p.keywordHere(); ok && kw == token.DO {
			break
		}
		if p.cur().Kind == token.SEMICOLON {
			p.advance()
			continue
		}
		if p.cur().Kind != token.LIT {
			return nil, &ParseError{Msg: "syntax error: expected word in for-in list"}
		}
		words = append(words, p.cur().Text)
		p.advance()
	}
	if err := p.expectKeyword(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseLine(stopDone)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword(token.DONE); err != nil {
		return nil, err
	}
	return &ast.ForClause{Var: varTok.Text, Words: words, Body: body}, nil
}
