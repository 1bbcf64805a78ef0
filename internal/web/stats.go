package web

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Eigenbraid/Dice/internal/heritage"
	"github.com/Eigenbraid/Dice/internal/logging"
	"github.com/a-h/templ"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.stats.HeritageStats(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statsPage(counts).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Warn("render stats", "error", err)
	}
}

// statsPage renders the heritage distribution as an HTML table.
func statsPage(counts []heritage.HeritageCount) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var total heritage.HeritageCount
		for _, c := range counts {
			total.First += c.First
			total.Last += c.Last
			total.Nickname += c.Nickname
		}

		if _, err := io.WriteString(w, `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Heritage distribution</title></head>
<body>
<h1>Heritage distribution</h1>
`); err != nil {
			return err
		}

		if len(counts) == 0 {
			_, err := io.WriteString(w, "<p>No heritage tags found.</p>\n</body>\n</html>\n")
			return err
		}

		if _, err := io.WriteString(w, "<table>\n<thead><tr><th>Heritage</th><th>Total</th><th>First</th><th>Last</th><th>Nickname</th></tr></thead>\n<tbody>\n"); err != nil {
			return err
		}
		for _, c := range counts {
			if err := statsRow(w, "td", c.Heritage, c); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</tbody>\n<tfoot>\n"); err != nil {
			return err
		}
		if err := statsRow(w, "th", "All", total); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</tfoot>\n</table>\n</body>\n</html>\n")
		return err
	})
}

func statsRow(w io.Writer, cell, label string, c heritage.HeritageCount) error {
	_, err := fmt.Fprintf(w, "<tr><%[1]s>%[2]s</%[1]s><%[1]s>%[3]d</%[1]s><%[1]s>%[4]d</%[1]s><%[1]s>%[5]d</%[1]s><%[1]s>%[6]d</%[1]s></tr>\n",
		cell, templ.EscapeString(label), c.Total(), c.First, c.Last, c.Nickname)
	return err
}
