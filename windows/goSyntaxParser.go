// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package windows

import (
	"go/scanner"
	"go/token"
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// TokenType classifies a rune of a transformation program for highlighting.
type TokenType int

const (
	TokenPlain    TokenType = iota
	TokenKeyword            // Go keywords, all of them rejected by the sandbox
	TokenString             // "...", `...`, '.'
	TokenComment            // //, /* */
	TokenLiteral            // numbers, true, false, nil
	TokenOperator           // +, -, (, ., ...
	TokenName               // dataset, tbl, result
	TokenMethod             // identifier after a dot
)

// SyntaxStyles defines the color scheme for different token types
var SyntaxStyles = map[TokenType]widget.TextGridStyle{
	TokenKeyword: &widget.CustomTextGridStyle{
		FGColor:   color.NRGBA{R: 255, G: 20, B: 147, A: 255},
		TextStyle: fyne.TextStyle{Bold: true},
	},
	TokenString: &widget.CustomTextGridStyle{
		FGColor: color.NRGBA{R: 0, G: 160, B: 0, A: 255},
	},
	TokenComment: &widget.CustomTextGridStyle{
		FGColor:   color.NRGBA{R: 128, G: 128, B: 128, A: 255},
		TextStyle: fyne.TextStyle{Italic: true},
	},
	TokenLiteral: &widget.CustomTextGridStyle{
		FGColor: color.NRGBA{R: 0, G: 150, B: 255, A: 255},
	},
	TokenOperator: &widget.CustomTextGridStyle{
		FGColor: color.NRGBA{R: 120, G: 120, B: 120, A: 255},
	},
	TokenName: &widget.CustomTextGridStyle{
		FGColor:   color.NRGBA{R: 0, G: 170, B: 170, A: 255},
		TextStyle: fyne.TextStyle{Bold: true},
	},
	TokenMethod: &widget.CustomTextGridStyle{
		FGColor: color.NRGBA{R: 255, G: 140, B: 0, A: 255},
	},
}

var sandboxNames = map[string]bool{"dataset": true, "tbl": true, "result": true}

// HighlightLines tokenizes src with the Go scanner and returns the token type
// of every rune, one slice per line.
func HighlightLines(src string) [][]TokenType {
	kinds := make([]TokenType, len(src))
	mark := func(offset, length int, t TokenType) {
		for i := offset; i < offset+length && i < len(kinds); i++ {
			kinds[i] = t
		}
	}

	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))
	var s scanner.Scanner
	s.Init(file, []byte(src), func(token.Position, string) {}, scanner.ScanComments)

	prev := token.ILLEGAL
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		offset := file.Offset(pos)
		switch {
		case tok == token.SEMICOLON && lit != ";":
			// inserted automatically
			continue
		case tok == token.COMMENT:
			mark(offset, len(lit), TokenComment)
		case tok == token.STRING || tok == token.CHAR:
			mark(offset, len(lit), TokenString)
		case tok == token.INT || tok == token.FLOAT || tok == token.IMAG:
			mark(offset, len(lit), TokenLiteral)
		case tok == token.IDENT:
			switch {
			case prev == token.PERIOD:
				mark(offset, len(lit), TokenMethod)
			case sandboxNames[lit]:
				mark(offset, len(lit), TokenName)
			case lit == "true" || lit == "false" || lit == "nil":
				mark(offset, len(lit), TokenLiteral)
			}
		case tok.IsKeyword():
			mark(offset, len(tok.String()), TokenKeyword)
		case tok.IsOperator():
			mark(offset, len(tok.String()), TokenOperator)
		}
		prev = tok
	}

	lines := strings.Split(src, "\n")
	out := make([][]TokenType, len(lines))
	offset := 0
	for i, line := range lines {
		row := make([]TokenType, 0, len(line))
		for j := range line {
			row = append(row, kinds[offset+j])
		}
		out[i] = row
		offset += len(line) + 1
	}
	return out
}
