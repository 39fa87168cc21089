package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/dvloznov/finance-advisor/internal/app"
	"github.com/dvloznov/finance-advisor/internal/auth"
	"github.com/dvloznov/finance-advisor/internal/config"
	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/dvloznov/finance-advisor/internal/export"
	"github.com/dvloznov/finance-advisor/internal/logger"
	"github.com/dvloznov/finance-advisor/internal/objectstore"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "summary":
		runSummary(cfg, log)
	case "suggest":
		runSuggest(cfg, log)
	case "chat":
		runChat(cfg, log)
	case "export":
		runExport(cfg, log)
	case "upload":
		runUpload(cfg, log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Advisor CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  summary   Print the dashboard totals of a user")
	fmt.Println("  suggest   Generate a savings tip for a user")
	fmt.Println("  chat      Ask the assistant a question about a user's finances")
	fmt.Println("  export    Write a user's incomes or expenses to an .xlsx file")
	fmt.Println("  upload    Upload a profile image to object storage")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// setup builds the application and resolves the user by email.
func setup(ctx context.Context, cfg *config.Config, log zerolog.Logger, email string) (*app.App, domain.User) {
	if email == "" {
		log.Fatal().Msg("Error: -email is required")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	u, err := a.Backend.Users.FindByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		a.Close()
		log.Fatal().Err(err).Str("email", email).Msg("User not found")
	}
	return a, u
}

func runSummary(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	email := fs.String("email", "", "Email of the user")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, u := setup(ctx, cfg, log, *email)
	defer a.Close()

	d, err := a.Finance.Dashboard(ctx, u.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build dashboard")
	}

	fmt.Println("\n=== Summary ===")
	fmt.Printf("User:               %s <%s>\n", u.FullName, u.Email)
	fmt.Printf("Total income:       %s%.2f\n", cfg.CurrencySymbol, d.TotalIncome)
	fmt.Printf("Total expenses:     %s%.2f\n", cfg.CurrencySymbol, d.TotalExpenses)
	fmt.Printf("Balance:            %s%.2f\n", cfg.CurrencySymbol, d.TotalBalance)
	fmt.Printf("Expenses (30 days): %s%.2f\n", cfg.CurrencySymbol, d.Last30DaysExpenses.Total)
	fmt.Printf("Income (60 days):   %s%.2f\n", cfg.CurrencySymbol, d.Last60DaysIncome.Total)

	fmt.Printf("\n=== Recent Transactions (%d) ===\n", len(d.RecentTransactions))
	for i, tx := range d.RecentTransactions {
		label := tx.Category
		if tx.Type == domain.KindIncome {
			label = tx.Source
		}
		fmt.Printf("%d. [%s] %s  %s%.2f  %s\n", i+1, tx.Type, label, cfg.CurrencySymbol, tx.Amount, tx.Date.Format("2006-01-02"))
	}
	fmt.Println()
}

func runSuggest(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	email := fs.String("email", "", "Email of the user")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, u := setup(ctx, cfg, log, *email)
	defer a.Close()

	s, err := a.Finance.Suggestion(ctx, u.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate suggestion")
	}

	fmt.Printf("\nIncome %s%.2f, expenses %s%.2f, savings %s%.2f\n\n",
		cfg.CurrencySymbol, s.Summary.TotalIncome,
		cfg.CurrencySymbol, s.Summary.TotalExpenses,
		cfg.CurrencySymbol, s.Summary.Savings)
	fmt.Println(s.Text)
}

func runChat(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	email := fs.String("email", "", "Email of the user")
	message := fs.String("message", "", "Question to ask")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, u := setup(ctx, cfg, log, *email)
	defer a.Close()

	reply, err := a.Finance.Chat(ctx, u.ID, *message, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Chat failed")
	}
	fmt.Println(reply)
}

func runExport(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	email := fs.String("email", "", "Email of the user")
	kind := fs.String("kind", string(domain.KindExpense), "Transactions to export: expense or income")
	out := fs.String("out", "", "Output path (defaults to expense_details.xlsx or income_details.xlsx)")
	fs.Parse(os.Args[2:])

	k := domain.Kind(*kind)
	if !k.Valid() {
		log.Fatal().Str("kind", *kind).Msg("Error: -kind must be expense or income")
	}
	if *out == "" {
		*out = export.Filename(k)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, u := setup(ctx, cfg, log, *email)
	defer a.Close()

	path, cleanup, err := a.Finance.ExportTransactions(ctx, u.ID, k)
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
	defer cleanup()

	if err := copyFile(path, *out); err != nil {
		log.Fatal().Err(err).Msg("Failed to write export")
	}

	fmt.Printf("Exported %s records to %s\n", k, *out)
}

func runUpload(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to local .png or .jpg file")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -file PATH")
	}
	if cfg.GCSBucket == "" {
		log.Fatal().Msg("Error: GCS_BUCKET is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open file")
	}
	defer f.Close()

	uploads, closeUploads, err := app.NewUploader(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create uploader")
	}
	defer closeUploads()

	contentType := mime.TypeByExtension(filepath.Ext(*filePath))
	if err := objectstore.CheckContentType(contentType); err != nil {
		log.Fatal().Err(err).Str("content_type", contentType).Msg("Unsupported file")
	}

	log.Info().Str("bucket", cfg.GCSBucket).Str("file", *filePath).Msg("Uploading image")

	url, err := uploads.Upload(ctx, filepath.Base(*filePath), contentType, f)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, url)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
