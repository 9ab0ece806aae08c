package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/term"

	"github.com/cellforth/cellforth/internal/panicerr"
)

func main() {
	ctx := context.Background()

	var (
		configPath string
		timeout    time.Duration
		trace      bool
		verbose    int
		capacity   uint
		imagePath  string
		savePath   string
		dump       bool
		check      bool
		runes      bool
	)
	flag.StringVar(&configPath, "config", "", "load session configuration from a TOML file")
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.IntVar(&verbose, "v", 0, "log verbosity")
	flag.UintVar(&capacity, "capacity", 0, "arena capacity in cells")
	flag.StringVar(&imagePath, "image", "", "start from a saved image")
	flag.StringVar(&savePath, "save", "", "save an image when the session ends")
	flag.BoolVar(&dump, "dump", false, "dump the VM to stderr when the session ends")
	flag.BoolVar(&check, "check", false, "run each file argument in its own VM and report faults")
	flag.BoolVar(&runes, "runes", false, "enable rune literals like 'a' and <ESC>")
	flag.Parse()

	cfg := &Config{}
	if configPath != "" {
		var err error
		if cfg, err = LoadConfig(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(2)
		}
	}
	if capacity != 0 {
		cfg.Memory.Capacity = capacity
	}
	if runes {
		cfg.Literals.Runes = true
	}
	if err := cfg.SetImagePaths(imagePath, savePath); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(2)
	}
	if trace {
		cfg.Trace = true
	}
	if timeout == 0 {
		timeout, _ = cfg.TimeLimit()
	}
	if cfg.Trace && verbose < 2 {
		verbose = 2
	}

	commonlog.Configure(verbose, nil)
	log := commonlog.GetLogger("cellforth")

	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if check {
		os.Exit(runCheck(ctx, cfg, flag.Args(), log))
	}
	os.Exit(runSession(ctx, cfg, flag.Args(), dump, log))
}

func runSession(ctx context.Context, cfg *Config, args []string, dump bool, log commonlog.Logger) int {
	opts, err := cfg.Options()
	if err != nil {
		log.Errorf("%v", err)
		return 2
	}
	opts = append(opts, WithOutput(os.Stdout))
	if cfg.Trace {
		opts = append(opts, WithLogf(log.Debugf))
	}
	if len(args) > 0 {
		for _, name := range args {
			f, err := os.Open(name)
			if err != nil {
				log.Errorf("%v", err)
				return 2
			}
			opts = append(opts, WithInput(f))
		}
	} else {
		opts = append(opts,
			WithInput(os.Stdin),
			WithPrompt(term.IsTerminal(int(os.Stdin.Fd()))))
	}

	vm, err := New(opts...)
	if err != nil {
		log.Errorf("%v", err)
		return 1
	}
	defer vm.Close()

	status := 0
	if err := vm.Run(ctx); err != nil {
		logRunError(log, err)
		status = 1
	}
	for _, fault := range vm.Faults() {
		log.Warningf("%v", fault)
	}
	if dump {
		vm.Dump(os.Stderr)
	}
	if cfg.Image.Save != "" {
		if err := saveImage(vm, cfg.Path(cfg.Image.Save)); err != nil {
			log.Errorf("%v", err)
			status = 1
		} else {
			log.Infof("saved image to %v", cfg.Image.Save)
		}
	}
	return status
}

func saveImage(vm *VM, path string) (rerr error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); rerr == nil {
			rerr = cerr
		}
	}()
	return vm.SaveImage(f)
}

func runCheck(ctx context.Context, cfg *Config, paths []string, log commonlog.Logger) int {
	results, err := Check(ctx, paths, cfg.Options)
	status := 0
	if err != nil {
		log.Errorf("%v", err)
		status = 2
	}
	for _, res := range results {
		if res.Path == "" {
			continue
		}
		for _, fault := range res.Faults {
			log.Warningf("%v", fault)
		}
		if res.Err != nil {
			logRunError(log, fmt.Errorf("%v: %w", res.Path, res.Err))
		}
		if res.OK() {
			fmt.Printf("ok   %v\n", res.Path)
		} else {
			fmt.Printf("FAIL %v\n", res.Path)
			if status == 0 {
				status = 1
			}
		}
	}
	return status
}

func logRunError(log commonlog.Logger, err error) {
	log.Errorf("%v", err)
	if stack := panicerr.PanicStack(err); stack != "" {
		log.Debugf("panic stack:\n%s", stack)
	}
}
