package csv

import (
	"bytes"
	"io"
)

// Replacement rewrites every occurrence of From with To in the raw byte
// stream before it reaches the CSV reader.
type Replacement struct {
	From string
	To   string
}

// rewriter is a bounded-memory streaming find/replace. Up to len(from)-1
// unmatched bytes are held back between reads so a match spanning two reads
// is still found. Replaced output is never rescanned.
type rewriter struct {
	src      io.Reader
	from, to []byte
	carry    []byte
	chunk    []byte
	out      bytes.Buffer
	eof      bool
}

func newRewriter(src io.Reader, rep Replacement) *rewriter {
	return &rewriter{
		src:   src,
		from:  []byte(rep.From),
		to:    []byte(rep.To),
		chunk: make([]byte, 32*1024),
	}
}

func (w *rewriter) Read(p []byte) (int, error) {
	for w.out.Len() == 0 {
		if w.eof {
			return 0, io.EOF
		}
		n, err := w.src.Read(w.chunk)
		if err != nil && err != io.EOF {
			return 0, err
		}
		w.eof = err == io.EOF
		w.fill(append(w.carry, w.chunk[:n]...))
	}
	return w.out.Read(p)
}

func (w *rewriter) fill(buf []byte) {
	i := 0
	for {
		j := bytes.Index(buf[i:], w.from)
		if j < 0 {
			break
		}
		w.out.Write(buf[i : i+j])
		w.out.Write(w.to)
		i += j + len(w.from)
	}
	rest := buf[i:]
	keep := 0
	if !w.eof {
		keep = min(len(w.from)-1, len(rest))
	}
	w.out.Write(rest[:len(rest)-keep])
	w.carry = append([]byte(nil), rest[len(rest)-keep:]...)
}

// applyReplacements chains one rewriter per non-empty replacement.
func applyReplacements(r io.Reader, reps []Replacement) io.Reader {
	for _, rep := range reps {
		if rep.From == "" || rep.From == rep.To {
			continue
		}
		r = newRewriter(r, rep)
	}
	return r
}
