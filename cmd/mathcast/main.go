package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/unixpickle/essentials"
	"golang.org/x/time/rate"

	"github.com/zephyrtronium/mathcast"
)

func main() {
	var (
		inname, verb                 string
		with                         [][2]string
		nl, verbose                  bool
		str, strid, tex, ids, speech bool
		eval, dump, flow             bool
		prec                         int
		cps                          float64
	)
	addwith := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=expr", not %q`, s)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	flag.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	flag.StringVar(&verb, "fmt", "%g", "evaluation result formatting string")
	flag.Func("given", "name=expr variable declaration (any number of times)", addwith)
	flag.IntVar(&prec, "p", mathcast.DefaultPrec, "precision of evaluation in bits")
	flag.BoolVar(&nl, "n", false, "parse separate input lines as separate expressions")
	flag.BoolVar(&verbose, "v", false, "log debug messages")
	flag.BoolVar(&str, "str", false, "print canonical strings (default if no other output is chosen)")
	flag.BoolVar(&strid, "strid", false, "print structural keys")
	flag.BoolVar(&tex, "tex", false, "print LaTeX")
	flag.BoolVar(&ids, "ids", false, "tag LaTeX nodes with their ids")
	flag.BoolVar(&speech, "speech", false, "print spoken text")
	flag.BoolVar(&eval, "eval", false, "print numeric values")
	flag.BoolVar(&dump, "dump", false, "print expression and flow trees")
	flag.BoolVar(&flow, "flow", false, "reveal LaTeX in time with simulated speech")
	flag.Float64Var(&cps, "cps", 15, "characters per second of simulated speech")
	flag.Parse()
	if prec <= 0 {
		essentials.Die(fmt.Sprintf("precision (%d) must be positive", prec))
	}
	if cps <= 0 {
		essentials.Die(fmt.Sprintf("speech rate (%g) must be positive", cps))
	}
	if !(strid || tex || speech || eval || dump || flow) {
		str = true
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	s := mathcast.NewSession(mathcast.Logger(log))

	for _, d := range with {
		t, err := s.Parse(d[1])
		if err != nil {
			essentials.Die(essentials.AddCtx("declaring "+d[0], err))
		}
		if _, err := s.Declare(d[0], t); err != nil {
			essentials.Die(essentials.AddCtx("declaring "+d[0], err))
		}
	}

	srcs := flag.Args()
	if in := infile(inname, len(srcs) == 0); in != nil {
		defer in.Close()
		r, err := readsrcs(in, nl)
		if err != nil {
			essentials.Die(essentials.AddCtx("reading input", err))
		}
		srcs = append(r, srcs...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var topts []mathcast.TexOption
	if ids {
		topts = append(topts, mathcast.NodeIDs())
	}
	verb += "\n"
	for _, src := range srcs {
		t, err := s.Parse(src)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if str {
			fmt.Println(t.Str())
		}
		paths := hasPath(t)
		if paths && (strid || tex || speech || flow) {
			fmt.Println("cannot render path literals in", t.Str())
		}
		if strid && !paths {
			fmt.Println(t.StrID())
		}
		if tex && !paths {
			fmt.Println(t.Tex(topts...))
		}
		if dump {
			t.Dump(os.Stdout)
		}
		if (speech || dump || flow) && !paths {
			f := mathcast.NewFlow(t)
			if speech {
				fmt.Println(f.Text())
			}
			if dump {
				f.Dump(os.Stdout)
			}
			if flow {
				if err := reveal(ctx, f, cps); err != nil {
					essentials.Die(err)
				}
			}
		}
		if eval {
			r, err := s.Eval(t, mathcast.Prec(uint(prec)))
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf(verb, r)
		}
	}
}

func infile(inname string, std bool) io.ReadCloser {
	switch {
	case inname != "" && inname != "-":
		f, err := os.Open(inname)
		if err != nil {
			essentials.Die(err)
		}
		return f
	case inname == "-", std:
		return os.Stdin
	}
	return nil
}

// hasPath reports whether t contains a path literal.
func hasPath(t *mathcast.Term) bool {
	for _, n := range mathcast.All(t) {
		if n.Kind() == mathcast.KindPath {
			return true
		}
	}
	return false
}

// readsrcs reads expressions from r, one per line if nl is set or else one in
// total. Blank lines are skipped.
func readsrcs(r io.Reader, nl bool) ([]string, error) {
	if !nl {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(string(b)) == "" {
			return nil, nil
		}
		return []string{string(b)}, nil
	}
	var srcs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		srcs = append(srcs, sc.Text())
	}
	return srcs, sc.Err()
}

// speaker simulates a speech engine reading at a fixed rate.
type speaker struct {
	speaking atomic.Bool
	offset   atomic.Int64
}

func (s *speaker) Speaking() bool  { return s.speaking.Load() }
func (s *speaker) CharOffset() int { return int(s.offset.Load()) }

// speak advances the cursor through text one character at a time.
func (s *speaker) speak(ctx context.Context, text string, lim *rate.Limiter) {
	defer s.speaking.Store(false)
	for i := range text {
		if err := lim.Wait(ctx); err != nil {
			return
		}
		s.offset.Store(int64(i))
	}
	s.offset.Store(int64(len(text)))
}

// reveal prints each distinct snapshot of f while simulated speech reads its
// text.
func reveal(ctx context.Context, f *mathcast.Flow, cps float64) error {
	fmt.Println(f.Text())
	var sp speaker
	sp.speaking.Store(true)
	go sp.speak(ctx, f.Text(), rate.NewLimiter(rate.Limit(cps), 1))
	last := ""
	err := mathcast.ShowFlow(ctx, f, &sp, nil, func(s string) {
		if s != last {
			fmt.Println(s)
			last = s
		}
	})
	return essentials.AddCtx("revealing flow", err)
}
