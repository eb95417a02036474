package rendering

import (
	"fmt"
	"strconv"
	"unicode"
)

// ParsePathData parses SVG path data supporting the M, L, H, V, Q, C and Z
// commands in both absolute and relative form. Coordinates following a
// moveto are treated as implicit linetos.
func ParsePathData(d string) (*Path, error) {
	toks, err := tokenizePathData(d)
	if err != nil {
		return nil, err
	}
	p := NewPath()
	var (
		cmd      byte
		pen      Offset
		subStart Offset
		i        int
	)
	next := func() (float64, error) {
		if i >= len(toks) || toks[i].isCmd {
			return 0, fmt.Errorf("path data: command %q expects more numbers", cmd)
		}
		v := toks[i].num
		i++
		return v, nil
	}
	nums := func(n int) ([]float64, error) {
		out := make([]float64, n)
		for j := range out {
			v, err := next()
			if err != nil {
				return nil, err
			}
			out[j] = v
		}
		return out, nil
	}
	for i < len(toks) {
		if toks[i].isCmd {
			cmd = toks[i].cmd
			i++
		} else if cmd == 0 {
			return nil, fmt.Errorf("path data: number before first command")
		}
		rel := unicode.IsLower(rune(cmd))
		base := Offset{}
		if rel {
			base = pen
		}
		switch unicode.ToUpper(rune(cmd)) {
		case 'M':
			a, err := nums(2)
			if err != nil {
				return nil, err
			}
			pen = Offset{base.X + a[0], base.Y + a[1]}
			subStart = pen
			p.MoveTo(pen.X, pen.Y)
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L':
			a, err := nums(2)
			if err != nil {
				return nil, err
			}
			pen = Offset{base.X + a[0], base.Y + a[1]}
			p.LineTo(pen.X, pen.Y)
		case 'H':
			v, err := next()
			if err != nil {
				return nil, err
			}
			pen.X = base.X + v
			p.LineTo(pen.X, pen.Y)
		case 'V':
			v, err := next()
			if err != nil {
				return nil, err
			}
			pen.Y = base.Y + v
			p.LineTo(pen.X, pen.Y)
		case 'Q':
			a, err := nums(4)
			if err != nil {
				return nil, err
			}
			p.QuadTo(base.X+a[0], base.Y+a[1], base.X+a[2], base.Y+a[3])
			pen = Offset{base.X + a[2], base.Y + a[3]}
		case 'C':
			a, err := nums(6)
			if err != nil {
				return nil, err
			}
			p.CubicTo(base.X+a[0], base.Y+a[1], base.X+a[2], base.Y+a[3], base.X+a[4], base.Y+a[5])
			pen = Offset{base.X + a[4], base.Y + a[5]}
		case 'Z':
			p.Close()
			pen = subStart
			if i < len(toks) && !toks[i].isCmd {
				return nil, fmt.Errorf("path data: unexpected number after close")
			}
		default:
			return nil, fmt.Errorf("path data: unsupported command %q", cmd)
		}
	}
	return p, nil
}

type pathToken struct {
	isCmd bool
	cmd   byte
	num   float64
}

func tokenizePathData(d string) ([]pathToken, error) {
	var toks []pathToken
	for i := 0; i < len(d); {
		c := d[i]
		switch {
		case c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r':
			i++
		case unicode.IsLetter(rune(c)) && c != 'e' && c != 'E':
			toks = append(toks, pathToken{isCmd: true, cmd: c})
			i++
		default:
			j := i
			if d[j] == '-' || d[j] == '+' {
				j++
			}
			seenDot, seenExp := false, false
		scan:
			for j < len(d) {
				ch := d[j]
				switch {
				case ch >= '0' && ch <= '9':
					j++
				case ch == '.' && !seenDot && !seenExp:
					seenDot = true
					j++
				case (ch == 'e' || ch == 'E') && !seenExp:
					seenExp = true
					j++
					if j < len(d) && (d[j] == '-' || d[j] == '+') {
						j++
					}
				default:
					break scan
				}
			}
			if j == i {
				return nil, fmt.Errorf("path data: unexpected character %q at %d", c, i)
			}
			v, err := strconv.ParseFloat(d[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("path data: %w", err)
			}
			toks = append(toks, pathToken{num: v})
			i = j
		}
	}
	return toks, nil
}
