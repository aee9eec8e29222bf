// Copyright 2025 The NGramServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the n-gram sentence sampling server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

NGramServe trains count-based n-gram language models from plain text and
samples sentence completions from them. It can operate as a MessagePack IPC
server for integration with editors and chat tooling, or as a CLI application
for testing and debugging.

The model keeps conditional probabilities for every n-gram seen in the
training corpus, up to a configurable maximum order. Sampling walks the
vocabulary in corpus order and draws successive tokens until a sentence end
marker appears or the draw finds no probability mass.

# Usage

Train from a corpus and start the server with default settings:

	ngramserve -corpus corpus.txt

Train a 4-gram model, save it, and enable debug mode:

	ngramserve -corpus corpus.txt -order 4 -model model.bin -d

Serve a previously saved model:

	ngramserve -model model.bin

Run in CLI mode for interactive testing:

	ngramserve -corpus corpus.txt -c -dist

Sample five completions for a fixed history and exit:

	ngramserve -corpus corpus.txt -gen 5 -start "<s>"

The corpus file holds one sentence per line with tokens separated by single
spaces. Lines with fewer than two tokens are skipped during counting. With
-wrap enabled every line is surrounded by sentence start and end markers
before counting.

# Configuration

Runtime configuration is managed through a TOML file that supports model
parameters, server limits, and CLI defaults:

	[model]
	max_order = 3
	seed = 0
	wrap_sentences = false

	[server]
	max_history = 64
	max_tokens = 256
	dist_limit = 16

	[cli]
	default_order = 0
	max_tokens = 0
	show_dist = false
	dist_limit = 10

The config file is automatically created with defaults if it doesn't exist.
Flags override the file values for the current run only.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Sampling requests
are processed synchronously with microsecond timing information included in
responses.

Send a completion request:

	{"id": "req1", "h": ["<s>", "the"], "n": 32}

Receive the drawn tokens in order:

	{"id": "req1", "w": ["cat", "sat", "</s>"], "c": 3, "t": 145}

Distribution and info requests expose the model itself:

	{"id": "dist1", "action": "dist", "h": ["the"], "limit": 8}
	{"id": "info1", "action": "get_info"}

# Server Mode

The default mode starts a MessagePack IPC server that processes sampling
requests from stdin and writes responses to stdout. This design enables
integration with text editors and other applications through process
communication.

	srv := server.NewServer(model, appConfig.Server)
	err := srv.Start()

The server validates history length and sampling order per request and
answers with short machine-readable error codes when a request is rejected.
All logging goes to stderr so the stdout stream stays clean for the protocol.

# CLI Mode

CLI mode provides an interactive interface for testing and debugging the
sampler. It reads a history from stdin per line and prints a completion in
the classic format, every token preceded by a single space.

	inputHandler := cli.NewInputHandler(model, order, maxTokens, distLimit, showDist)
	err := inputHandler.Start()

This mode is primarily intended for development and testing new features
before deploying to server mode. With -dist it also shows the ranked
next-token distribution after each completion.

# Model Pipeline

The core model functionality is provided by the lm package, which implements
sliding-window counting, maximum likelihood estimation, and inverse-CDF
sampling, with a Patricia trie index for distribution queries.

	counts := lm.CountLines(lines, maxOrder)
	model := lm.NewModel(counts, src)
	words := model.CompleteSentence([]string{"<s>"}, maxOrder)

Models serialize to MessagePack for reuse across runs, so training on a
large corpus happens once.

# Command Line Flags

The following flags control application behavior:

	-corpus string
	    Training corpus file, one sentence per line
	-model string
	    Model file to load, or to save when training
	-order int
	    Maximum n-gram order for training (default from config)
	-seed int
	    Seed for the sampler, 0 uses the current time
	-wrap
	    Surround corpus lines with sentence markers before counting
	-vocab string
	    Write the vocabulary to this file after counting
	-counts string
	    Write raw n-gram counts to this file after counting
	-gen int
	    Sample this many completions and exit
	-start string
	    History for -gen, whitespace separated (default "<s>")
	-sorder int
	    Sampling order, 0 uses the model order
	-max int
	    Max tokens drawn per completion, 0 for unbounded
	-dist
	    Show the ranked next-token distribution after each completion
	-dlimit int
	    Number of distribution entries to show
	-c  Run in CLI mode instead of server mode
	-d  Enable debug mode with detailed logging
	-config string
	    Path to a custom config.toml

Corpus and model paths are resolved relative to the working directory first
and the executable location second, supporting both development and
production deployments.

# Sampling

Completions come from repeated draws against the conditional probability
table. A draw that finds no mass for its history produces the fail marker
and ends the completion, so a sentence either reaches its end marker, hits
the configured token cap, or fails visibly. Fixed seeds make whole runs
reproducible.
*/
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/ngramserve/internal/cli"
	"github.com/bastiangx/ngramserve/internal/utils"
	"github.com/bastiangx/ngramserve/pkg/config"
	"github.com/bastiangx/ngramserve/pkg/corpus"
	"github.com/bastiangx/ngramserve/pkg/lm"
	"github.com/bastiangx/ngramserve/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.2.0-beta"
	AppName = "ngramserve"
	gh      = "https://github.com/bastiangx/ngramserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to train or load the model and then hands it to
// the server or CLI interfaces. main() does not implement logic for them and
// only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	// custom Flags
	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "", "Path to a custom config.toml")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	corpusPath := flag.String("corpus", "", "Training corpus file, one sentence per line")
	modelPath := flag.String("model", "", "Model file to load, or to save when training")
	trainOrder := flag.Int("order", defaultConfig.Model.MaxOrder, "Maximum n-gram order for training")
	seed := flag.Int64("seed", defaultConfig.Model.Seed, "Seed for the sampler (0 uses the current time)")
	wrapLines := flag.Bool("wrap", defaultConfig.Model.WrapSentences, "Surround corpus lines with sentence markers before counting")
	vocabDump := flag.String("vocab", "", "Write the vocabulary to this file after counting")
	countsDump := flag.String("counts", "", "Write raw n-gram counts to this file after counting")
	genCount := flag.Int("gen", 0, "Sample this many completions and exit")
	genStart := flag.String("start", lm.SentenceStart, "History for -gen, whitespace separated")
	samplingOrder := flag.Int("sorder", defaultConfig.CLI.DefaultOrder, "Sampling order (0 uses the model order)")
	maxTokens := flag.Int("max", defaultConfig.CLI.MaxTokens, "Max tokens drawn per completion (0 for unbounded)")
	showDist := flag.Bool("dist", defaultConfig.CLI.ShowDist, "Show the ranked next-token distribution after each completion")
	distLimit := flag.Int("dlimit", defaultConfig.CLI.DistLimit, "Number of distribution entries to show")

	flag.Parse()

	if *showVersion {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()

		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
			Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})

		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ NGramServe ] Samples sentence completions, fast!")
		logger.Print("", "version", Version)
		logger.Print("")
		logger.Print("use -h or --help to see available options")
		logger.Print("Github Repo", "gh", gh)

		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	// Initialize path resolver for robust path handling
	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
		os.Exit(1)
	}

	appConfig, activeConfigPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Warnf("Config load failed: %v. Using built-in defaults...", err)
		appConfig = config.DefaultConfig()
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activeConfigPath))

	// Flags win over file values for this run only.
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	modelCfg := appConfig.Model
	if setFlags["order"] {
		modelCfg.MaxOrder = *trainOrder
	}
	if setFlags["seed"] {
		modelCfg.Seed = *seed
	}
	if setFlags["wrap"] {
		modelCfg.WrapSentences = *wrapLines
	}

	cliCfg := appConfig.CLI
	if setFlags["sorder"] {
		cliCfg.DefaultOrder = *samplingOrder
	}
	if setFlags["max"] {
		cliCfg.MaxTokens = *maxTokens
	}
	if setFlags["dist"] {
		cliCfg.ShowDist = *showDist
	}
	if setFlags["dlimit"] {
		cliCfg.DistLimit = *distLimit
	}

	var src lm.Rand
	if modelCfg.Seed != 0 {
		src = rand.New(rand.NewSource(modelCfg.Seed))
		log.Debugf("sampler seeded with %d", modelCfg.Seed)
	}

	model, err := buildModel(pathResolver, modelCfg, *corpusPath, *modelPath, *vocabDump, *countsDump, src)
	if err != nil {
		log.Fatalf("Failed to init model: %v", err)
		os.Exit(1)
	}

	// Batch sampling runs before the interactive modes and exits on its own.
	if *genCount > 0 {
		history := utils.SplitHistory(*genStart)
		if err := utils.ValidateHistory(history, 0); err != nil {
			log.Fatalf("Bad -start history: %v", err)
			os.Exit(1)
		}
		order, err := utils.ResolveOrder(cliCfg.DefaultOrder, model.MaxOrder())
		if err != nil {
			log.Fatalf("Bad sampling order: %v", err)
			os.Exit(1)
		}
		cli.Generate(os.Stdout, model, history, order, cliCfg.MaxTokens, *genCount)
		return
	}

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		order, err := utils.ResolveOrder(cliCfg.DefaultOrder, model.MaxOrder())
		if err != nil {
			log.Fatalf("Bad sampling order: %v", err)
			os.Exit(1)
		}
		log.Debug("Input info:",
			"order", order,
			"maxTokens", cliCfg.MaxTokens,
			"showDist", cliCfg.ShowDist,
			"distLimit", cliCfg.DistLimit)

		inputHandler := cli.NewInputHandler(model, order, cliCfg.MaxTokens, cliCfg.DistLimit, cliCfg.ShowDist)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
			os.Exit(1)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(model, appConfig.Server)

	showStartupInfo(model)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

// buildModel trains from a corpus, or falls back to a saved model file.
// With neither available it returns an empty model so the interfaces still
// come up.
func buildModel(resolver *utils.PathResolver, cfg config.ModelConfig, corpusPath, modelPath, vocabDump, countsDump string, src lm.Rand) (*lm.Model, error) {
	if corpusPath != "" {
		resolved, err := resolver.ResolveFile(corpusPath)
		if err != nil {
			return nil, fmt.Errorf("corpus %s not found", corpusPath)
		}
		lines, err := corpus.ReadLines(resolved)
		if err != nil {
			return nil, err
		}
		if cfg.WrapSentences {
			lines = corpus.WrapAll(lines)
		}

		counts := lm.CountLines(lines, cfg.MaxOrder)
		if vocabDump != "" {
			if err := corpus.WriteVocab(resolver.ResolveWritable(vocabDump), counts.Vocab.Words()); err != nil {
				return nil, err
			}
		}
		if countsDump != "" {
			if err := corpus.WriteCounts(resolver.ResolveWritable(countsDump), counts.NGrams); err != nil {
				return nil, err
			}
		}

		model := lm.NewModel(counts, src)
		if modelPath != "" {
			if err := saveModel(model, resolver.ResolveWritable(modelPath)); err != nil {
				return nil, err
			}
		}
		return model, nil
	}

	if modelPath != "" {
		resolved, err := resolver.ResolveFile(modelPath)
		if err != nil {
			return nil, fmt.Errorf("model %s not found", modelPath)
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, err
		}
		model, err := lm.DecodeModel(data, src)
		if err != nil {
			return nil, err
		}
		log.Debugf("model loaded from %s", resolved)
		return model, nil
	}

	log.Warn("No corpus or model specified, starting with an empty model...")
	return lm.NewModel(lm.CountLines(nil, cfg.MaxOrder), src), nil
}

// saveModel writes the encoded model to disk.
func saveModel(model *lm.Model, path string) error {
	data, err := model.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	log.Debugf("model saved to %s", path)
	return nil
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(model *lm.Model) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("============")
	println(" NGramServe ")
	println("============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("model: %s n-grams, %s words, order %d",
		utils.FormatWithCommas(model.NGramCount()),
		utils.FormatWithCommas(model.VocabSize()),
		model.MaxOrder())
	log.Info("status: ready")
	println("============")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
