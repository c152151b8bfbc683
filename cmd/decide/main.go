package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"psyai-api/internal/cli"
	"psyai-api/internal/config"
	"psyai-api/internal/svc"
	"psyai-api/pkg/decision"
)

func fatalf(format string, args ...interface{}) {
	logx.Errorf(format, args...)
	os.Exit(1)
}

// parseOptions splits a comma/semicolon separated option list, deduplicated
// in input order.
func parseOptions(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if _, exists := seen[field]; exists {
			continue
		}
		seen[field] = struct{}{}
		out = append(out, field)
	}
	return out
}

func printRecord(rec *decision.Record) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		fatalf("render record: %v", err)
	}
	fmt.Println(string(data))
}

func main() {
	var (
		configPath = flag.String("f", "etc/psyai.yaml", "the config file")
		scenario   = flag.String("scenario", "", "decision scenario to submit")
		optionsRaw = flag.String("options", "", "comma-separated decision options (2-4)")
		message    = flag.String("message", "", "free-form chat message to extract a decision from")
		listFlag   = flag.Bool("list", false, "list decisions awaiting human review")
		thread     = flag.String("thread", "", "thread ID of a suspended decision to resolve")
		approve    = flag.Bool("approve", false, "approve the model prediction for -thread")
		override   = flag.String("override", "", "override choice for -thread; must be one of its options")
		timeout    = flag.Duration("timeout", 2*time.Minute, "overall command timeout")
	)
	flag.Parse()
	logx.MustSetup(logx.LogConf{})
	logx.DisableStat()

	cfg := config.MustLoad(*configPath)
	cli.LogConfigSummary(cfg)

	svcCtx := svc.NewServiceContext(*cfg)
	if svcCtx.LLMClient != nil {
		defer func() {
			_ = svcCtx.LLMClient.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	switch {
	case *listFlag:
		pending, err := svcCtx.Workflow.ListPending(ctx)
		if err != nil {
			fatalf("list pending decisions: %v", err)
		}
		if len(pending) == 0 {
			fmt.Println("no decisions awaiting review")
			return
		}
		for _, rec := range pending {
			fmt.Printf("%s  %q -> %s (%.2f)\n", rec.ThreadID, rec.Scenario, rec.ModelPrediction, rec.Confidence)
		}

	case *thread != "":
		if !*approve && strings.TrimSpace(*override) == "" {
			fatalf("resolving %s requires -approve or -override", *thread)
		}
		rec, err := svcCtx.Workflow.Resolve(ctx, *thread, decision.Resolution{
			Approved: *approve,
			Override: *override,
		})
		if err != nil {
			fatalf("resolve decision %s: %v", *thread, err)
		}
		printRecord(rec)

	case *message != "":
		if svcCtx.Extractor == nil {
			fatalf("no extraction model configured; provide an llm section in %s", *configPath)
		}
		prompt, err := svcCtx.Extractor.Extract(ctx, *message)
		if err != nil {
			fatalf("extract decision: %v", err)
		}
		if prompt == nil {
			fmt.Println("message did not parse into a decision; try rephrasing with explicit options")
			return
		}
		rec, err := svcCtx.Workflow.Run(ctx, "", prompt.Scenario, prompt.Options)
		if err != nil {
			fatalf("run decision workflow: %v", err)
		}
		printRecord(rec)
		fmt.Printf("suspended for review; resolve with: decide -thread %s -approve\n", rec.ThreadID)

	case *scenario != "":
		options := parseOptions(*optionsRaw)
		rec, err := svcCtx.Workflow.Run(ctx, "", *scenario, options)
		if err != nil {
			fatalf("run decision workflow: %v", err)
		}
		printRecord(rec)
		fmt.Printf("suspended for review; resolve with: decide -thread %s -approve\n", rec.ThreadID)

	default:
		flag.Usage()
		os.Exit(2)
	}
}
