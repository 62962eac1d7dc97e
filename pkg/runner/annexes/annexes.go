// Package annexes prints the publications running into an issue.
package annexes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"golang.org/x/text/language"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/printers"
	"tableflip.dev/bulletin/pkg/workspace"
)

type Annexes struct {
	Workspace     *workspace.Workspace
	IssueID       int
	PublicationID string
	// Extra lists publication ids linked by hand after the running annexes.
	Extra  []string
	Lang   language.Tag
	ShowID bool
	JSON   bool
	Out    io.Writer
}

func (a *Annexes) Do(ctx context.Context) error {
	if a.Workspace == nil {
		return fmt.Errorf("failed to create workspace")
	}
	if err := a.Workspace.Refresh(ctx); err != nil {
		return err
	}
	var filter []string
	if a.PublicationID != "" {
		filter = append(filter, a.PublicationID)
	}
	running, err := a.Workspace.RunningAnnexes(a.IssueID, filter...)
	if err != nil {
		return err
	}

	msg := a.message(running)

	out := a.Out
	if out == nil {
		out = color.Output
	}
	if a.JSON {
		return json.NewEncoder(out).Encode(struct {
			Annexes    []issue.RunningAnnex `json:"annexes"`
			ExtraLinks []string             `json:"extra_links"`
		}{running, msg.ExtraLinks})
	}
	pp := &printers.PrettyPrint{ShowID: a.ShowID, Out: out, Lang: a.Lang}
	pp.RunningAnnexes(a.IssueID, running...)

	extra := make([]issue.Publication, 0, len(msg.ExtraLinks))
	for _, id := range msg.ExtraLinks {
		pub, ok := a.Workspace.Publication(id)
		if !ok {
			pub = issue.Publication{ID: id}
		}
		extra = append(extra, pub)
	}
	pp.ExtraLinks(extra...)
	return nil
}

// message builds the issue message links. Extra ids already carried as
// running annexes are dropped, as are repeats.
func (a *Annexes) message(running []issue.RunningAnnex) issue.RunningAnnexesMessage {
	var msg issue.RunningAnnexesMessage
	for _, id := range a.Extra {
		msg.Remove(id)
		msg.InsertAt(len(msg.ExtraLinks), id)
	}
	for _, ra := range running {
		msg.Remove(ra.Publication.ID)
	}
	if msg.ExtraLinks == nil {
		msg.ExtraLinks = []string{}
	}
	return msg
}
