// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/knowme-tui/internal/app"
	"github.com/jeranaias/knowme-tui/internal/model"
	"github.com/jeranaias/knowme-tui/internal/notice"
	"github.com/jeranaias/knowme-tui/internal/ui/styles"
	"github.com/jeranaias/knowme-tui/internal/util"
)

func newDocsCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents"},
		Short:   "Manage the PDFs KnowMe answers from",
	}
	cmd.AddCommand(newDocsListCommand(a), newDocsUploadCommand(a), newDocsDeleteCommand(a))
	return cmd
}

func newDocsListCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored documents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.Store()
			if err != nil {
				return err
			}
			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()
			if err := store.Library.Refresh(ctx); err != nil {
				return err
			}
			return a.printDocuments(store.Library.Documents())
		},
	}
}

func (a *App) printDocuments(docs []model.Document) error {
	if a.jsonMode {
		data := make([]DocumentData, 0, len(docs))
		for _, d := range docs {
			data = append(data, documentData(d))
		}
		return NewJSONResponse("docs list", data).Write(a.Out)
	}

	if len(docs) == 0 {
		fmt.Fprintln(a.Out, DimStyle.Render("No documents uploaded yet. Try 'knowme docs upload <file.pdf>'."))
		return nil
	}
	width := 0
	for _, d := range docs {
		width = max(width, util.StringWidth(d.Name))
	}
	width = min(width, 60)
	for _, d := range docs {
		name := util.PadRight(util.TruncateWidth(d.Name, width), width)
		fmt.Fprintf(a.Out, "  %s  %s\n", name, DimStyle.Render(d.SizeLabel()))
	}
	fmt.Fprintln(a.Out, DimStyle.Render(fmt.Sprintf("%d documents", len(docs))))
	return nil
}

func documentData(d model.Document) DocumentData {
	out := DocumentData{Name: d.Name}
	if d.SizeKnown {
		size := d.Size
		out.Size = &size
	}
	if !d.UploadedAt.IsZero() {
		out.UploadedAt = d.UploadedAt.Format(time.RFC3339)
	}
	return out
}

func newDocsUploadCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.pdf>...",
		Short: "Upload one or more PDFs",
		Example: `  knowme docs upload ~/cv.pdf
  knowme docs upload notes/*.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.Store()
			if err != nil {
				return err
			}
			var first error
			uploaded := make([]DocumentData, 0, len(args))
			for _, path := range args {
				if err := a.uploadOne(cmd.Context(), store, path); err != nil {
					if first == nil {
						first = err
					}
					continue
				}
				if d, ok := store.Library.Lookup(filepath.Base(path)); ok {
					uploaded = append(uploaded, documentData(d))
				}
			}
			if a.jsonMode && first == nil {
				return NewJSONResponse("docs upload", uploaded).Write(a.Out)
			}
			return first
		},
	}
}

func (a *App) uploadOne(ctx context.Context, store *app.Store, path string) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if !model.IsPDFName(path) {
		return &ValidationError{
			Field:   "file",
			Value:   path,
			Reason:  "only PDF files can be uploaded",
			Example: "knowme docs upload report.pdf",
		}
	}
	err := store.Library.UploadFile(ctx, path)
	if !a.jsonMode {
		a.printLatestNotice(store)
	}
	return err
}

// printLatestNotice echoes the controller's outcome message.
func (a *App) printLatestNotice(store *app.Store) {
	n, ok := store.Notices.Latest()
	if !ok {
		return
	}
	switch n.Kind {
	case notice.KindSuccess:
		fmt.Fprintln(a.Out, styles.RenderSuccess(n.Text))
	case notice.KindError:
		fmt.Fprintln(a.Out, styles.RenderError(n.Text))
	case notice.KindWarning:
		fmt.Fprintln(a.Out, styles.RenderWarning(n.Text))
	default:
		fmt.Fprintln(a.Out, n.Text)
	}
	store.Notices.Dismiss(n.ID)
}

func newDocsDeleteCommand(a *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored document",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.Store()
			if err != nil {
				return err
			}
			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()

			name := args[0]
			if err := store.Library.Refresh(ctx); err != nil {
				return err
			}
			if !store.Library.RequestDelete(name) {
				return &NotFoundError{Resource: "document", ID: name}
			}

			ok, err := a.RequireConfirmation("delete "+name, ConfirmationOptions{Yes: yes, JSONMode: a.jsonMode})
			if err != nil || !ok {
				store.Dispatch(ctx, app.CancelDelete{})
				if err == nil {
					fmt.Fprintln(a.Out, DimStyle.Render("Cancelled."))
				}
				return err
			}

			err = store.Library.ConfirmDelete(ctx)
			if a.jsonMode {
				if err != nil {
					return err
				}
				return NewJSONResponse("docs delete", map[string]string{"deleted": name}).Write(a.Out)
			}
			a.printLatestNotice(store)
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
