// Command scriptforge generates short-form marketing video scripts: research
// a topic, retrieve style references, write candidate scripts in parallel,
// gate them for quality, and rank the hooks of the winner.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"scriptforge/pkg/config"
	"scriptforge/pkg/gate"
	"scriptforge/pkg/metrics"
	"scriptforge/pkg/optimizer"
	"scriptforge/pkg/persistence"
	"scriptforge/pkg/pipeline"
	"scriptforge/pkg/policy"
	"scriptforge/pkg/research"
	"scriptforge/pkg/retrieval"
	"scriptforge/pkg/version"
	"scriptforge/pkg/writer"
)

func main() {
	var (
		topic        = flag.String("topic", "", "Topic to generate scripts for")
		mode         = flag.String("mode", "informational", "Script mode: informational or listicle")
		notes        = flag.String("notes", "", "Additional user notes for the writer")
		contentFile  = flag.String("content-file", "", "Path to a document to base the script on")
		skipResearch = flag.Bool("skip-research", false, "Skip research, write from the topic and supplied content only")
		variants     = flag.Int("variants", 0, "Number of script variants to generate (overrides policy)")
		projectDir   = flag.String("projectdir", ".", "Project directory")
		policyPath   = flag.String("policy", "", "Path to a policy YAML file (overrides config)")
		dbPath       = flag.String("db", "", "Path to the SQLite database (overrides config)")
		addStyle     = flag.String("add-style", "", "Add a style reference from a file and exit")
		styleKind    = flag.String("style-kind", "full", "Kind for -add-style: full or hook")
		listRuns     = flag.Bool("list-runs", false, "List recent runs and exit")
		usage        = flag.Bool("usage", false, "Print per-model usage from Prometheus and exit")
		metricsAddr  = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9091)")
		promURL      = flag.String("prom-url", "http://localhost:9090", "Prometheus base URL for -usage")
		showVersion  = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("scriptforge %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
		os.Exit(0)
	}

	os.Exit(run(&options{
		topic:        *topic,
		mode:         *mode,
		notes:        *notes,
		contentFile:  *contentFile,
		skipResearch: *skipResearch,
		variants:     *variants,
		projectDir:   *projectDir,
		policyPath:   *policyPath,
		dbPath:       *dbPath,
		addStyle:     *addStyle,
		styleKind:    *styleKind,
		listRuns:     *listRuns,
		usage:        *usage,
		promURL:      *promURL,
		metricsAddr:  *metricsAddr,
	}))
}

type options struct {
	topic        string
	mode         string
	notes        string
	contentFile  string
	skipResearch bool
	variants     int
	projectDir   string
	policyPath   string
	dbPath       string
	addStyle     string
	styleKind    string
	listRuns     bool
	usage        bool
	promURL      string
	metricsAddr  string
}

// run contains the main application logic and returns an exit code, so that
// defers execute before the process exits.
func run(opts *options) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.usage {
		return printUsage(ctx, opts.promURL)
	}

	if opts.metricsAddr != "" {
		srv := metrics.Serve(opts.metricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	cfg, err := config.Load(opts.projectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	if err := handleSecretsDecryption(opts.projectDir); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decrypt secrets: %v\n", err)
		return 1
	}

	policyPath := opts.policyPath
	if policyPath == "" {
		policyPath = cfg.PolicyPath
	}
	pol, err := policy.Load(policyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load policy: %v\n", err)
		return 1
	}
	if opts.variants > 0 {
		if err := pol.SetVariantCount(opts.variants); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -variants value: %v\n", err)
			return 1
		}
	}

	dbPath := opts.dbPath
	if dbPath == "" {
		dbPath = cfg.Storage.DBPath
	}
	store, err := persistence.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	switch {
	case opts.addStyle != "":
		return addStyleRef(ctx, store, opts.addStyle, opts.styleKind, opts.mode)
	case opts.listRuns:
		return printRuns(ctx, store)
	}

	if strings.TrimSpace(opts.topic) == "" {
		fmt.Fprintln(os.Stderr, "A topic is required: -topic \"...\"")
		flag.Usage()
		return 1
	}

	scriptMode := pipeline.ModeInformational
	if opts.mode == string(pipeline.ModeListicle) {
		scriptMode = pipeline.ModeListicle
	}

	var suppliedContent string
	if opts.contentFile != "" {
		data, err := os.ReadFile(opts.contentFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read content file: %v\n", err)
			return 1
		}
		suppliedContent = string(data)
	}

	clients, err := buildClients(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	stages := pipeline.Stages{
		Research:  research.NewStage(clients.Researcher, clients.Selector),
		Retrieval: retrieval.NewStage(store, clients.Selector),
		Writer:    writer.NewStage(clients.Planner, clients.Writer, pol),
		Gate:      gate.NewStage(clients.Critic, pol),
		Optimizer: optimizer.NewStage(clients.Planner),
	}
	engine := pipeline.NewEngine(stages, pol.RevisionBudget, printProgress)

	state := &pipeline.State{
		Topic:           opts.topic,
		Mode:            scriptMode,
		UserNotes:       opts.notes,
		SuppliedContent: suppliedContent,
		SkipResearch:    opts.skipResearch,
	}

	result, err := engine.Run(ctx, state)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generation failed: %v\n", err)
		return 1
	}

	return printResult(ctx, store, result)
}

func printProgress(stageName string, summary map[string]any) {
	if len(summary) == 0 {
		fmt.Printf("· %s done\n", stageName)
		return
	}
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, summary[k])
	}
	fmt.Printf("· %s done (%s)\n", stageName, strings.Join(parts, " "))
}

func printResult(ctx context.Context, store *persistence.Store, result *pipeline.Result) int {
	switch result.Outcome {
	case pipeline.OutcomeNeedsAngle:
		fmt.Println("\nThe topic is too broad to research directly. Pick an angle and rerun:")
		for i, angle := range result.SuggestedAngles {
			fmt.Printf("  %d. %s\n", i+1, angle)
		}
		return 0

	case pipeline.OutcomeNeedsClarification:
		fmt.Println("\nThe topic is ambiguous. Clarify and rerun:")
		for i, q := range result.ClarifyingQuestions {
			fmt.Printf("  %d. %s\n", i+1, q)
		}
		return 0
	}

	fmt.Println()
	fmt.Println(result.State.CombinedOutput)
	if result.State.SummaryTable != "" {
		fmt.Println(result.State.SummaryTable)
	}
	fmt.Println("════════════════════════════════════════")
	fmt.Printf("Best hook: #%d  Ranking: %v\n", result.BestVariantIndex, result.RankedHookOrder)
	if result.FinalText != result.State.CombinedOutput {
		fmt.Println("\nOPTIMIZED SCRIPT:")
		fmt.Println(result.FinalText)
	}

	id, err := store.SaveRun(ctx, result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save run: %v\n", err)
	} else {
		fmt.Printf("\nSaved as run %s\n", id)
	}
	return 0
}

func addStyleRef(ctx context.Context, store *persistence.Store, path, kind, mode string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read style file: %v\n", err)
		return 1
	}
	k := retrieval.KindFull
	if kind == string(retrieval.KindHook) {
		k = retrieval.KindHook
	}
	id, err := store.AddStyleRef(ctx, k, mode, string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to add style reference: %v\n", err)
		return 1
	}
	fmt.Printf("Added %s style reference %s\n", k, id)
	return 0
}

func printRuns(ctx context.Context, store *persistence.Store) int {
	records, err := store.ListRuns(ctx, 20)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list runs: %v\n", err)
		return 1
	}
	if len(records) == 0 {
		fmt.Println("No runs yet.")
		return 0
	}
	for _, r := range records {
		fmt.Printf("%s  %-12s %-20s score=%-3d rev=%d  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Outcome, r.GateVerdict+"/"+r.TopicType,
			r.GateScore, r.RevisionCount, r.Topic)
	}
	return 0
}

func printUsage(ctx context.Context, promURL string) int {
	svc, err := metrics.NewQueryService(promURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create Prometheus client: %v\n", err)
		return 1
	}
	usage, err := svc.GetModelUsage(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query usage: %v\n", err)
		return 1
	}
	if len(usage) == 0 {
		fmt.Println("No usage recorded.")
		return 0
	}
	models := make([]string, 0, len(usage))
	for m := range usage {
		models = append(models, m)
	}
	sort.Strings(models)
	for _, m := range models {
		fmt.Println(formatUsageLine(m, usage[m]))
	}
	return 0
}

func formatUsageLine(model string, u *metrics.ModelUsage) string {
	return fmt.Sprintf("%-30s requests=%-6d failures=%-4d total=%.1fs",
		model, u.Requests, u.Failures, u.TotalDuration)
}

// handleSecretsDecryption loads encrypted credentials into memory when a
// secrets file exists. Without one, keys come from the environment.
func handleSecretsDecryption(projectDir string) error {
	if !config.SecretsFileExists(projectDir) {
		return nil
	}
	if !term.IsTerminal(syscall.Stdin) {
		fmt.Fprintln(os.Stderr, "Secrets file present but stdin is not a terminal; falling back to environment keys.")
		return nil
	}

	fmt.Print("Secrets password: ")
	password, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	secrets, err := config.DecryptSecretsFile(projectDir, string(password))
	if err != nil {
		return err
	}
	config.SetDecryptedSecrets(secrets)
	return nil
}
