package report

import (
	"bufio"
	"fmt"
	"io"

	"nat-flow-resolver/internal/model"
)

// FormatResult renders a result as a single report line without a newline.
func FormatResult(r model.Result) string {
	if !r.Matched {
		return fmt.Sprintf("No NAT match for %s", r.Endpoint)
	}
	return fmt.Sprintf("%s -> %s", r.Endpoint, r.Output)
}

// Writer emits report lines in sequence order. Results may arrive out of
// order (for example from several resolver goroutines); each one is held
// until every lower sequence number has been written. Sequence numbers
// start at 0. A Writer is not safe for concurrent use.
type Writer struct {
	w         *bufio.Writer
	next      int
	pending   map[int]model.Result
	matched   uint64
	unmatched uint64
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:       bufio.NewWriter(w),
		pending: make(map[int]model.Result),
	}
}

func (w *Writer) Write(seq int, r model.Result) error {
	if seq < w.next {
		return fmt.Errorf("sequence %d already written", seq)
	}
	if _, ok := w.pending[seq]; ok {
		return fmt.Errorf("duplicate sequence %d", seq)
	}
	w.pending[seq] = r

	for {
		next, ok := w.pending[w.next]
		if !ok {
			return nil
		}
		delete(w.pending, w.next)
		if _, err := fmt.Fprintln(w.w, FormatResult(next)); err != nil {
			return err
		}
		if next.Matched {
			w.matched++
		} else {
			w.unmatched++
		}
		w.next++
	}
}

// Pending is the number of results held back waiting for a gap to fill.
func (w *Writer) Pending() int {
	return len(w.pending)
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}

func (w *Writer) Matched() uint64   { return w.matched }
func (w *Writer) Unmatched() uint64 { return w.unmatched }
