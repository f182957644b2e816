package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"feriaocr/pkg/store"
)

// Print writes a status and product breakdown of extractions created since
// since. top limits the product list; 0 prints all.
func Print(w io.Writer, sum store.Summary, since time.Time, top int) {
	var total int64
	for _, c := range sum.ByStatus {
		total += c.N
	}
	fmt.Fprintf(w, "Extractions since %s (UTC): %d\n", since.UTC().Format("2006-01-02"), total)
	for _, c := range sum.ByStatus {
		fmt.Fprintf(w, "  %-8s %6d  %5.1f%%\n", c.Key, c.N, pct(c.N, total))
	}
	products := sum.ByProduct
	if top > 0 && len(products) > top {
		products = products[:top]
	}
	if len(products) == 0 {
		return
	}
	fmt.Fprintln(w, "Products:")
	for _, c := range products {
		fmt.Fprintf(w, "  %-16s %6d\n", c.Key, c.N)
	}
}

// Run loads the summary from st and prints it.
func Run(ctx context.Context, w io.Writer, st *store.Store, since time.Time, top int) error {
	sum, err := st.Summarize(ctx, since)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	Print(w, sum, since, top)
	return nil
}

func pct(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
