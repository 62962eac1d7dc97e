package options

import (
	"github.com/spf13/cobra"
)

// IDOptions
type IDOptions struct {
	ShowID bool
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show issue and publication ids.")
}

// IssueOptions selects an issue and, optionally, one publication.
type IssueOptions struct {
	IssueID       int
	PublicationID string
}

func AddIssueArgs(cmd *cobra.Command, o *IssueOptions) {
	cmd.Flags().IntVar(&o.IssueID, "issue", 0,
		"Issue number. Defaults to the current issue.")
	cmd.Flags().StringVar(&o.PublicationID, "publication", "",
		"Only show this publication id.")
}
