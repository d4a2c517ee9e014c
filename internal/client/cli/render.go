package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/services"
)

func renderList(w io.Writer, v services.ListView, policy services.FetchErrorPolicy) {
	if v.Err != nil && policy == services.PanelOnError {
		fmt.Fprintln(w, "Error:", client.Message(v.Err))
		return
	}
	if v.Err != nil {
		fmt.Fprintln(w, "Error:", client.Message(v.Err), "(showing the previous page)")
	}
	if len(v.Items) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tSTATUS\tPHOTO")
	for _, u := range v.Items {
		photo := ""
		if u.ProfilePhoto != nil {
			photo = u.ProfilePhoto.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.Status, photo)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "%d-%d of %d, page %d/%d, %d per page\n",
		v.FirstItem, v.LastItem, v.Total, v.PageIndex+1, max(v.TotalPages, 1), v.PageSize)
	if strip := pageStrip(v); strip != "" {
		fmt.Fprintln(w, strip)
	}
}

// pageStrip renders e.g. "« ‹ 3 4 [5] 6 7 › »", or "" when there are too
// few pages for one.
func pageStrip(v services.ListView) string {
	if !v.ShowStrip {
		return ""
	}
	var parts []string
	if v.HasPrevious {
		parts = append(parts, "«", "‹")
	}
	for _, i := range v.PageNumbers {
		if i == v.PageIndex {
			parts = append(parts, fmt.Sprintf("[%d]", i+1))
		} else {
			parts = append(parts, fmt.Sprint(i+1))
		}
	}
	if v.HasNext {
		parts = append(parts, "›", "»")
	}
	return strings.Join(parts, " ")
}

func renderUser(w io.Writer, u models.User) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", u.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Role:\t%s\n", u.Role)
	fmt.Fprintf(tw, "Status:\t%s\n", u.Status)
	if u.ProfilePhoto != nil {
		fmt.Fprintf(tw, "Photo:\t%s <%s>\n", u.ProfilePhoto.Name, u.ProfilePhoto.URL)
	}
	_ = tw.Flush()
}
