package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/stitchworks/stitch/internal/agent"
	"github.com/stitchworks/stitch/internal/config"
	"github.com/stitchworks/stitch/internal/contextgen"
	"github.com/stitchworks/stitch/internal/engine"
	"github.com/stitchworks/stitch/internal/providers"
	"github.com/stitchworks/stitch/internal/session"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Fatalf("stitch: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	userCfg := loadUserConfig()

	fs := flag.NewFlagSet("stitch", flag.ExitOnError)
	projectFlag := fs.String("project", "", "Path to project root (default: current directory)")
	dbFlag := fs.String("db", "", "Path to session database (default: <project>/.stitch/sessions.db)")
	maxTurns := fs.Int("max-turns", defaultMaxTurns(userCfg), "Maximum model round trips per session")
	jsonOut := fs.Bool("json", false, "Print the full session result as JSON")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	verbose := fs.Bool("verbose", false, "Log every model round trip and tool result")

	if err := fs.Parse(args); err != nil {
		return err
	}

	request := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if request == "" {
		return fmt.Errorf("usage: stitch [flags] <request>")
	}

	env, err := prepareRuntimeEnv(ctx, *projectFlag, resolveDBPath(*dbFlag, userCfg))
	if err != nil {
		return err
	}
	defer env.Close()

	llm, modelName, err := providers.NewLLMClientFromEnv()
	if err != nil {
		return err
	}
	log.Printf("Using model: %s", modelName)

	var projectContext string
	if env.Index != nil {
		projectContext, err = env.Index.BuildContext(request, contextgen.DefaultTopK)
		if err != nil {
			log.Printf("context generation failed: %v (continuing without it)", err)
			projectContext = ""
		}
	}

	var hooks []engine.Hook
	if !*quiet {
		hooks = append(hooks, engine.ProgressHook{Sink: stderrProgress})
	}
	if *verbose {
		hooks = append(hooks, engine.LoggerHook{L: log.New(os.Stderr, "", log.LstdFlags)})
	}

	sess := agent.NewSession(llm, env.Snapshot, sessionConfig(userCfg, *maxTurns), hooks...)

	result, err := sess.Run(ctx, request, projectContext)
	if err != nil {
		return err
	}

	rec := session.Record{
		ID:        uuid.NewString(),
		ProjectID: env.ProjectID,
		Request:   request,
		Result:    *result,
		CreatedAt: time.Now().UTC(),
	}
	if err := env.Store.SaveResult(ctx, rec); err != nil {
		log.Printf("failed to persist session: %v", err)
	}

	return printResult(result, *jsonOut)
}

// stderrProgress prints progress events as single lines on stderr.
func stderrProgress(ev engine.Event) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", ev.Type, ev.Detail)
}

// defaultMaxTurns picks the flag default: the configured budget when
// set, the built-in one otherwise.
func defaultMaxTurns(cfg *config.Config) int {
	if cfg.MaxTurns > 0 {
		return cfg.MaxTurns
	}
	return agent.DefaultMaxTurns
}

// resolveDBPath prefers the flag over the configured path; empty means
// prepareRuntimeEnv falls back to <project>/.stitch/sessions.db.
func resolveDBPath(flagValue string, cfg *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.DBPath
}

// sessionConfig combines the turn budget with the model knobs from the
// user's config.
func sessionConfig(cfg *config.Config, maxTurns int) agent.Config {
	return agent.Config{
		MaxTurns:        maxTurns,
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}
}

func printResult(result *session.Result, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if result.AgentResponse != "" {
		fmt.Println(result.AgentResponse)
	}
	if len(result.ChangedFiles) > 0 {
		fmt.Printf("\nChanged files (%d):\n", len(result.ChangedFiles))
		for _, cf := range result.ChangedFiles {
			fmt.Printf("  %-8s %s\n", cf.Action, cf.Path)
		}
	}
	if result.Summary != "" {
		fmt.Printf("\nSummary: %s\n", result.Summary)
	}
	if len(result.EnvVarsNeeded) > 0 {
		fmt.Printf("\nEnvironment variables needed: %s\n", strings.Join(result.EnvVarsNeeded, ", "))
	}
	fmt.Printf("\nTurns: %d, tokens: %d in / %d out\n",
		result.TurnCount, result.TokenUsage.Input, result.TokenUsage.Output)
	return nil
}
