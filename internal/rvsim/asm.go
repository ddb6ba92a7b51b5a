package rvsim

import (
	"strconv"
	"strings"
)

type inst struct {
	op   string
	args []string
	line int
}

// Program is assembled text ready to run.
type Program struct {
	insts  []inst
	labels map[string]int
}

// Assemble reads assembly text. Directives are accepted and ignored.
func Assemble(text string) (*Program, error) {
	p := &Program{labels: make(map[string]int)}
	for i, raw := range strings.Split(text, "\n") {
		line := i + 1
		if idx := strings.IndexByte(raw, '#'); idx >= 0 {
			raw = raw[:idx]
		}
		raw = strings.TrimSpace(raw)
		for {
			colon := strings.IndexByte(raw, ':')
			if colon < 0 {
				break
			}
			label := strings.TrimSpace(raw[:colon])
			if label == "" || strings.ContainsAny(label, " \t,") {
				return nil, trapf(TrapBadOperand, line, "malformed label %q", raw[:colon])
			}
			if _, dup := p.labels[label]; dup {
				return nil, trapf(TrapBadOperand, line, "label %s redefined", label)
			}
			p.labels[label] = len(p.insts)
			raw = strings.TrimSpace(raw[colon+1:])
		}
		if raw == "" || strings.HasPrefix(raw, ".") {
			continue
		}
		op, rest, _ := strings.Cut(raw, " ")
		in := inst{op: op, line: line}
		if rest = strings.TrimSpace(rest); rest != "" {
			for _, a := range strings.Split(rest, ",") {
				in.args = append(in.args, strings.TrimSpace(a))
			}
		}
		p.insts = append(p.insts, in)
	}
	return p, nil
}

var abiNames = map[string]int{
	"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
	"t0": 5, "t1": 6, "t2": 7, "s0": 8, "fp": 8, "s1": 9,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23,
	"s8": 24, "s9": 25, "s10": 26, "s11": 27,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

func regIndex(name string) (int, bool) {
	if n, ok := abiNames[name]; ok {
		return n, true
	}
	if strings.HasPrefix(name, "x") {
		n, err := strconv.Atoi(name[1:])
		if err == nil && n >= 0 && n < 32 {
			return n, true
		}
	}
	return 0, false
}
