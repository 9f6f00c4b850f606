package settlement

import (
	"fmt"
	"strings"
)

// buildPage renders a settlement page the way the RTS site lays it out.
func buildPage(headers []string, rows ...[]string) []byte {
	var b strings.Builder
	b.WriteString(`<html><head><title>Real-Time SPP</title></head><body>`)
	b.WriteString(`<table class="other"><tr><th>ignored</th></tr></table>`)
	b.WriteString(`<table class="tableStyle"><tr>`)
	for _, h := range headers {
		fmt.Fprintf(&b, `<th class="headerValueClass">%s</th>`, h)
	}
	b.WriteString(`</tr>`)
	for _, row := range rows {
		b.WriteString(`<tr>`)
		for _, c := range row {
			fmt.Fprintf(&b, `<td class="labelClassCenter">%s</td>`, c)
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</table></body></html>`)
	return []byte(b.String())
}
