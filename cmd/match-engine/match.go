package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-matcher/internal/config"
	"github.com/jonathan/job-matcher/internal/logger"
	"github.com/jonathan/job-matcher/internal/matching"
	"github.com/jonathan/job-matcher/internal/types"
)

var matchCommand = &cobra.Command{
	Use:   "match",
	Short: "Score a CV against a job file once and print the ranking",
	Long: `Runs the matching pipeline one time: reads the candidate text and a JSON
array of job postings from files, ranks the jobs and prints the result.`,
	RunE: runMatchCmd,
}

var (
	matchConfigPath string
	matchCVPath     string
	matchJobsPath   string
	matchMethod     string
	matchTop        int
	matchFast       bool
	matchVerbose    bool
)

func init() {
	matchCommand.Flags().StringVar(&matchConfigPath, "config", "", "Path to config.json file")
	matchCommand.Flags().StringVar(&matchCVPath, "cv", "", "Path to candidate text file (required)")
	matchCommand.Flags().StringVar(&matchJobsPath, "jobs", "", "Path to JSON file with a job posting array (required)")
	matchCommand.Flags().StringVarP(&matchMethod, "method", "m", "hybrid", "Scoring method: transformer, tfidf or hybrid")
	matchCommand.Flags().IntVar(&matchTop, "top", 10, "How many results to print")
	matchCommand.Flags().BoolVar(&matchFast, "fast", false, "Reduce large job files to the lexical top candidates before semantic scoring")
	matchCommand.Flags().BoolVarP(&matchVerbose, "verbose", "v", false, "Print detailed debug information")

	_ = matchCommand.MarkFlagRequired("cv")
	_ = matchCommand.MarkFlagRequired("jobs")

	rootCmd.AddCommand(matchCommand)
}

func runMatchCmd(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if matchConfigPath != "" {
		loaded, err := config.LoadConfig(matchConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}
	cfg = cfg.MergeWithDefaults(config.DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(false, matchVerbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cvText, err := os.ReadFile(matchCVPath)
	if err != nil {
		return fmt.Errorf("failed to read CV file: %w", err)
	}
	jobs, err := readJobs(matchJobsPath)
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}

	resp, err := engine.Match(context.Background(), matching.Request{
		CandidateText: string(cvText),
		Jobs:          jobs,
		Options: matching.Options{
			Method:   matchMethod,
			FastMode: matchFast,
			Weights:  weightsOverride(cfg),
		},
	})
	if err != nil {
		return err
	}

	printMatches(resp, matchTop)
	return nil
}

func readJobs(path string) ([]types.JobPosting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs file: %w", err)
	}
	var jobs []types.JobPosting
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse jobs JSON: %w", err)
	}
	return jobs, nil
}

func printMatches(resp *types.MatchResponse, top int) {
	fmt.Printf("Candidate: level=%s years=%d\n", resp.CVInfo.Level, resp.CVInfo.Years)
	if resp.HybridInfo != nil {
		fmt.Printf("Method: %s (weights semantic=%.2f lexical=%.2f skill=%.2f, %d jobs processed)\n",
			resp.HybridInfo.Method,
			resp.HybridInfo.Weights.Semantic,
			resp.HybridInfo.Weights.Lexical,
			resp.HybridInfo.Weights.Skill,
			resp.HybridInfo.TotalJobsProcessed)
	}
	fmt.Println()

	for i, m := range resp.JobMatches {
		if i >= top {
			break
		}
		name := m.JobID
		if name == "" {
			name = fmt.Sprintf("#%d", m.JobIndex)
		}
		fmt.Printf("%2d. %-24s %6.2f  (semantic %.1f, lexical %.1f, skills %.1f)\n",
			i+1, name, m.Score, m.Breakdown.Semantic, m.Breakdown.Lexical, m.Breakdown.SkillMatch)
		if len(m.MissingRequirements) > 0 {
			fmt.Printf("    missing: %s\n", strings.Join(m.MissingRequirements, ", "))
		}
		if m.Notes != "" {
			fmt.Printf("    note: %s\n", m.Notes)
		}
	}
}
