package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/subtrack/internal"
	"go.uber.org/zap"
)

type Params struct {
	Action    string `descr:"What to do" positional:"true" alts:"list,add,edit,delete,import,export,init-config" strict:"true"`
	Config    string `descr:"Path to config file (default ~/.subtrack/config.yaml)" optional:"true"`
	Storage   string `descr:"Storage backend (overrides config)" alts:"file,memory,redis" optional:"true"`
	DataDir   string `descr:"Data directory of the file backend (overrides config)" optional:"true"`
	Currency  string `descr:"Currency code for display, e.g. USD, EUR, SEK (overrides config)" optional:"true"`
	LogLevel  string `descr:"Log level: debug, info, warn, error (overrides config)" optional:"true"`
	Output    string `descr:"Output format" alts:"table,json" default:"table"`
	Sort      string `descr:"Sort field" alts:"added,name,cost,next" default:"added"`
	SortDir   string `descr:"Sort direction" alts:"asc,desc" default:"asc"`
	Category  string `descr:"Category of the subscription (add, edit), or only show this category (list)" optional:"true"`
	Target    string `descr:"Id (or unique id prefix) of the subscription to edit or delete" optional:"true"`
	Name      string `descr:"Subscription name (add, edit)" optional:"true"`
	Cost      string `descr:"Cost per billing period (add, edit)" optional:"true"`
	Frequency string `descr:"Billing period: daily, weekly, monthly, yearly (add, edit)" optional:"true"`
	NextDate  string `descr:"Next renewal date, YYYY-MM-DD (add, edit)" optional:"true"`
	Notes     string `descr:"Free-form notes (add, edit)" optional:"true"`
	File      string `descr:"File to import from (format:path allowed) or export to (.xlsx)" optional:"true"`
	Format    string `descr:"Import format when it cannot be inferred from the file" optional:"true"`
}

func main() {
	boa.NewCmdT[Params]("subtrack").
		WithShort("Track recurring subscriptions and what they cost").
		WithLong("Keeps a local list of subscriptions, moves overdue renewal dates forward by whole billing periods, " +
			"and shows monthly and yearly totals. Actions: list, add, edit, delete, import, export, init-config.").
		WithRunFunc(func(params *Params) {
			if err := run(context.Background(), params, os.Stdout, os.Stderr); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(ctx context.Context, params *Params, stdout, stderr io.Writer) error {
	if err := internal.LoadDotEnv(".env"); err != nil {
		return err
	}

	cfg, err := internal.LoadConfigOrDefault(params.Config, params.Config != "")
	if err != nil {
		return err
	}
	// init-config writes back what was in the file, not env or flag overrides
	fileCfg := cfg.Clone()
	cfg.ApplyEnv(os.LookupEnv)
	applyFlagOverrides(cfg, params)

	log := internal.NewLogger(cfg.LogLevel)
	defer log.Sync()

	storage, err := internal.NewStorage(cfg.Storage)
	if err != nil {
		return err
	}
	if closer, ok := storage.(io.Closer); ok {
		defer closer.Close()
	}
	if fs, ok := storage.(*internal.FileStorage); ok {
		log.Debug("using file storage", zap.String("dir", fs.Dir()))
	} else {
		log.Debug("using storage backend", zap.String("backend", cfg.Storage.Backend))
	}

	store, outcome, err := internal.Open(ctx, storage, internal.StoreOptions{Logger: log})
	if err != nil {
		return err
	}
	if outcome == internal.OutcomeCorruptState {
		fmt.Fprintln(stderr, "Warning: stored subscriptions could not be read and were reset to an empty list")
	}

	currency := internal.ResolveCurrency(cfg.Currency)
	opts := internal.OutputOptions{
		SortField: params.Sort,
		SortDir:   params.SortDir,
		Currency:  currency,
	}
	if params.Action == "list" || params.Action == "export" {
		// for add and edit --category is a field value, not a filter
		opts.Category = params.Category
	}
	quiet := params.Output == "json"

	switch params.Action {
	case "list":
		// rendered below
	case "add":
		in, err := formFields(params).ToNewSubscription(cfg.AllCategories())
		if err != nil {
			return err
		}
		sub, err := store.Add(ctx, in)
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(stdout, "Added %s (%s)\n\n", sub.Name, sub.ID[:min(len(sub.ID), internal.ShortIDLen)])
		}
	case "edit":
		id, err := resolveTarget(store, params.Target)
		if err != nil {
			return err
		}
		// The edit target is looked up explicitly and its id carried to Update
		current, _ := store.Edit(id)
		patch, err := formFields(params).ToPatch(cfg.AllCategories())
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			return errors.New("nothing to change: pass at least one of --name, --category, --cost, --frequency, --next-date, --notes")
		}
		outcome, err := store.Update(ctx, id, patch)
		if err != nil {
			return err
		}
		if outcome == internal.OutcomeNotFound {
			return fmt.Errorf("subscription %s no longer exists", id)
		}
		if !quiet {
			fmt.Fprintf(stdout, "Updated %s\n\n", current.Name)
		}
	case "delete":
		id, err := resolveTarget(store, params.Target)
		if err != nil {
			return err
		}
		current, _ := store.Edit(id)
		outcome, err := store.Delete(ctx, id)
		if err != nil {
			return err
		}
		if outcome == internal.OutcomeNotFound {
			return fmt.Errorf("subscription %s no longer exists", id)
		}
		if !quiet {
			fmt.Fprintf(stdout, "Deleted %s\n\n", current.Name)
		}
	case "import":
		n, err := importFile(ctx, store, params.File, params.Format, cfg.AllCategories())
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(stdout, "Imported %d subscriptions\n\n", n)
		}
	case "export":
		if params.File == "" {
			return errors.New("--file is required for export")
		}
		view := internal.PrepareView(store.Summary(), opts)
		if err := internal.ExportXLSX(params.File, view); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Exported %d subscriptions to %s\n", view.Count, params.File)
		return nil
	case "init-config":
		path := params.Config
		if path == "" {
			path = internal.DefaultConfigPath()
		}
		if err := internal.GenerateConfigTemplate(store.List(), fileCfg).Save(path); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Wrote config to %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown action %q", params.Action)
	}

	view := internal.PrepareView(store.Summary(), opts)
	if params.Output == "json" {
		return internal.PrintSummaryJSON(stdout, view, currency)
	}
	internal.PrintSummaryTable(stdout, view, opts)
	return nil
}

func applyFlagOverrides(cfg *internal.Config, params *Params) {
	if params.Storage != "" {
		cfg.Storage.Backend = params.Storage
	}
	if params.DataDir != "" {
		cfg.Storage.Dir = internal.ExpandHome(params.DataDir)
	}
	if params.Currency != "" {
		cfg.Currency = params.Currency
	}
	if params.LogLevel != "" {
		cfg.LogLevel = params.LogLevel
	}
}

func formFields(params *Params) internal.InputFields {
	return internal.InputFields{
		Name:      params.Name,
		Category:  params.Category,
		Cost:      params.Cost,
		Frequency: params.Frequency,
		NextDate:  params.NextDate,
		Notes:     params.Notes,
	}
}

func resolveTarget(store *internal.Store, target string) (string, error) {
	if target == "" {
		return "", errors.New("--target is required: pass the id shown in the ID column")
	}
	id, outcome := store.ResolveID(target)
	if outcome == internal.OutcomeNotFound {
		return "", fmt.Errorf("no single subscription matches id %q", target)
	}
	return id, nil
}

// importFile validates every row before adding any, so a bad file changes nothing
func importFile(ctx context.Context, store *internal.Store, fileArg, format string, categories []string) (int, error) {
	if fileArg == "" {
		return 0, errors.New("--file is required for import")
	}
	importer, path, err := internal.ResolveImport(fileArg, format)
	if err != nil {
		return 0, err
	}
	rows, err := importer.Import(path)
	if err != nil {
		return 0, fmt.Errorf("importing %s: %w", path, err)
	}

	var subs []internal.NewSubscription
	var errs []error
	for i, row := range rows {
		sub, err := row.ToNewSubscription(categories)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		subs = append(subs, sub)
	}
	if len(errs) > 0 {
		return 0, fmt.Errorf("importing %s: %w", path, errors.Join(errs...))
	}

	for _, sub := range subs {
		if _, err := store.Add(ctx, sub); err != nil {
			return 0, err
		}
	}
	return len(subs), nil
}
