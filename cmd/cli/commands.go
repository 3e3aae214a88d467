package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
	"github.com/wadjakorntonsri/linkpage/pkg/core/linklist"
	"github.com/wadjakorntonsri/linkpage/pkg/core/services"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", store.Dialect())
			return nil
		},
	}
}

// PageExport is the export/import file format.
type PageExport struct {
	Page  domain.LandingPage `json:"page"`
	Links []domain.LinkEntry `json:"links"`
}

func newExportCmd(opts *options) *cobra.Command {
	var pageID string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a page and its links as JSON to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			ownerID, err := opts.ownerID(ctx, store)
			if err != nil {
				return err
			}
			pages := services.NewPageService(store, store, store, nil, opts.logger())
			page, err := pages.GetPage(ctx, pageID, ownerID)
			if err != nil {
				return err
			}

			export := PageExport{Links: page.Links}
			page.Links = nil
			export.Page = *page

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(export)
		},
	}
	cmd.Flags().StringVar(&pageID, "page", "", "page id")
	_ = cmd.MarkFlagRequired("page")
	return cmd
}

func newImportCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create a page with its links from an export file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			var export PageExport
			if err := json.NewDecoder(f).Decode(&export); err != nil {
				return fmt.Errorf("decode %s: %w", file, err)
			}

			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			ownerID, err := opts.ownerID(ctx, store)
			if err != nil {
				return err
			}

			log := opts.logger()
			pages := services.NewPageService(store, store, store, nil, log)
			links := services.NewLinkService(store, store, nil, log)

			src := export.Page
			page, err := pages.CreatePage(ctx, ownerID, domain.PageInput{Title: src.Title, Slug: src.Slug, Bio: src.Bio, Theme: src.Theme})
			if err != nil {
				return err
			}
			custom := src.Customization
			if _, err := pages.UpdatePage(ctx, page.ID, ownerID, domain.PagePatch{Customization: &custom}); err != nil {
				return err
			}

			entries := append([]domain.LinkEntry(nil), export.Links...)
			slices.SortStableFunc(entries, func(a, b domain.LinkEntry) int { return cmp.Compare(a.Position, b.Position) })
			linklist.Renumber(entries)
			count := 0
			for _, e := range entries {
				created, err := links.CreateLink(ctx, page.ID, ownerID, domain.LinkInput{Title: e.Title, URL: e.URL, Kind: e.Kind}, e.Position)
				if err != nil {
					log.WithError(err).Warn("skipping entry " + e.Title)
					continue
				}
				if !e.IsActive {
					inactive := false
					if _, err := links.UpdateLink(ctx, created.ID, ownerID, domain.LinkPatch{IsActive: &inactive}); err != nil {
						return err
					}
				}
				count++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported page %s with %d links\n", page.ID, count)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newLinksCmd(opts *options) *cobra.Command {
	var pageID string
	cmd := &cobra.Command{
		Use:   "links",
		Short: "List and edit the ordered links of a page",
	}
	cmd.PersistentFlags().StringVar(&pageID, "page", "", "page id")
	_ = cmd.MarkPersistentFlagRequired("page")

	// withManager loads the page into a manager, runs fn, and prints the
	// resulting list.
	withManager := func(cmd *cobra.Command, fn func(m *linklist.Manager) error) error {
		ctx := cmd.Context()
		store, ownerID, closeStore, err := opts.linkStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		m := linklist.New(store, pageID, ownerID, linklist.WithLogger(opts.logger()))
		defer m.Close()
		if err := m.Load(ctx); err != nil {
			return err
		}
		if fn != nil {
			if err := fn(m); err != nil {
				return err
			}
		}
		return printEntries(cmd, m.Entries())
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the links in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(cmd, nil)
		},
	}

	var (
		title, url string
		header     bool
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Append a link or section header",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := domain.LinkInput{Title: title, URL: url, Kind: domain.KindLink}
			if header {
				in.Kind = domain.KindHeader
			}
			return withManager(cmd, func(m *linklist.Manager) error {
				_, err := m.Create(cmd.Context(), in)
				return err
			})
		},
	}
	add.Flags().StringVar(&title, "title", "", "link title")
	add.Flags().StringVar(&url, "url", "", "link URL")
	add.Flags().BoolVar(&header, "header", false, "add a section header instead of a link")
	_ = add.MarkFlagRequired("title")

	var (
		editTitle, editURL string
		active             bool
	)
	edit := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a link's title, URL or visibility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.LinkPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &editTitle
			}
			if cmd.Flags().Changed("url") {
				patch.URL = &editURL
			}
			if cmd.Flags().Changed("active") {
				patch.IsActive = &active
			}
			return withManager(cmd, func(m *linklist.Manager) error {
				_, err := m.Update(cmd.Context(), args[0], patch)
				return err
			})
		},
	}
	edit.Flags().StringVar(&editTitle, "title", "", "new title")
	edit.Flags().StringVar(&editURL, "url", "", "new URL")
	edit.Flags().BoolVar(&active, "active", true, "show the link on the public page")

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(m *linklist.Manager) error {
				return m.Delete(cmd.Context(), args[0])
			})
		},
	}

	move := &cobra.Command{
		Use:   "move FROM TO",
		Short: "Move the link at index FROM to index TO",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("FROM: %w", err)
			}
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("TO: %w", err)
			}
			return withManager(cmd, func(m *linklist.Manager) error {
				if n := len(m.Entries()); from < 0 || from >= n || to < 0 || to >= n {
					return fmt.Errorf("indices must be within 0..%d", n-1)
				}
				return m.Reorder(cmd.Context(), from, to)
			})
		},
	}

	cmd.AddCommand(list, add, edit, rm, move)
	return cmd
}

func printEntries(cmd *cobra.Command, entries []domain.LinkEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tKIND\tACTIVE\tTITLE\tURL")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\t%s\n", e.Position, e.ID, e.Kind, e.IsActive, e.Title, e.URL)
	}
	return w.Flush()
}
