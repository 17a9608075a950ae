// Command paperctl renders, checks and downloads exam papers outside the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/stemsi/exstem-paper/internal/client"
	"github.com/stemsi/exstem-paper/internal/config"
	"github.com/stemsi/exstem-paper/internal/logger"
	"github.com/stemsi/exstem-paper/internal/mapper"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/paper"
	"github.com/stemsi/exstem-paper/internal/render"
	"github.com/stemsi/exstem-paper/internal/service"
	"github.com/stemsi/exstem-paper/internal/validator"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()
	log := logger.New(os.Stderr, cfg.LogLevel, "console")

	var err error
	switch os.Args[1] {
	case "render":
		err = runRender(os.Args[2:], cfg)
	case "validate":
		err = runValidate(os.Args[2:], os.Stdout)
	case "fetch":
		err = runFetch(os.Args[2:], cfg, log)
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("paperctl failed")
	}
}

func printUsage() {
	fmt.Println("Usage: paperctl <command> [flags]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  render    -in paper.json -format html|pdf|xlsx -out file [-font file.ttf]")
	fmt.Println("  validate  -in paper.json")
	fmt.Println("  fetch     -paper ID -out paper.json")
}

// ─── render ────────────────────────────────────────────────────────────

func runRender(args []string, cfg *config.Config) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	in := fs.String("in", "", "exported paper JSON")
	format := fs.String("format", "html", "html, pdf or xlsx")
	out := fs.String("out", "", "output file (stdout when empty)")
	font := fs.String("font", cfg.PDFFontPath, "TTF font for PDF output")
	fs.Parse(args)

	f, err := service.ParseFormat(*format)
	if err != nil {
		return err
	}
	p, err := readPaper(*in)
	if err != nil {
		return err
	}

	w := io.Writer(os.Stdout)
	if *out != "" {
		file, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	return service.NewRenderService(*font).Render(w, p, f)
}

// ─── validate ──────────────────────────────────────────────────────────

// problem is one question that fails its group's rules.
type problem struct {
	Label  string
	Fields validator.FieldErrors
}

// checkPaper runs the question rules on every question of p, in print order.
func checkPaper(p model.Paper) []problem {
	var problems []problem
	starts := render.StartNumbers(p)
	for si, sec := range p.Sections {
		for gi, g := range sec.Groups {
			for qi, q := range g.Questions {
				label := fmt.Sprintf("%s Q%d", sec.Title, starts[si][gi]+qi)
				f, err := mapper.FromEntity(q, g.QuestionType)
				if err != nil {
					problems = append(problems, problem{Label: label, Fields: validator.FieldErrors{"question_type": err.Error()}})
					continue
				}
				if errs := validator.Validate(f); len(errs) > 0 {
					problems = append(problems, problem{Label: label, Fields: errs})
				}
			}
		}
	}
	return problems
}

func runValidate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	in := fs.String("in", "", "exported paper JSON")
	fs.Parse(args)

	p, err := readPaper(*in)
	if err != nil {
		return err
	}

	problems := checkPaper(p)
	for _, pr := range problems {
		fmt.Fprintf(out, "%s: %s\n", pr.Label, pr.Fields.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d question(s) failed validation", len(problems))
	}
	fmt.Fprintf(out, "%d question(s) OK\n", p.QuestionCount())
	return nil
}

// ─── fetch ─────────────────────────────────────────────────────────────

func runFetch(args []string, cfg *config.Config, log zerolog.Logger) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	id := fs.String("paper", "", "paper ID on the API")
	out := fs.String("out", "paper.json", "output file")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-paper is required")
	}
	token, err := apiToken()
	if err != nil {
		return err
	}

	api := client.New(cfg.APIBaseURL, cfg.APITimeout, log, client.WithTokenStore(client.NewStaticToken(token)))
	p, err := api.GetPaper(context.Background(), model.ID(*id))
	if err != nil {
		return err
	}

	file, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := paper.Export(file, p); err != nil {
		return err
	}
	log.Info().Str("paper_id", *id).Str("out", *out).Int("questions", p.QuestionCount()).Msg("Paper saved")
	return nil
}

// apiToken reads API_TOKEN or prompts for it without echo.
func apiToken() (string, error) {
	if token := strings.TrimSpace(os.Getenv("API_TOKEN")); token != "" {
		return token, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("API_TOKEN is not set and stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, "API token: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func readPaper(path string) (model.Paper, error) {
	if path == "" {
		return paper.Import(os.Stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return model.Paper{}, err
	}
	defer file.Close()
	return paper.Import(file)
}
