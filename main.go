package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"dtv/internal/annotation"
	"dtv/internal/config"
	"dtv/internal/model"
	"dtv/internal/tui"
	"dtv/internal/web"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
)

func checkUpdate(repo, currentVer string) {
	if repo == "" {
		fmt.Println("No update repository configured (set --update-repo or DTV_UPDATE_REPO).")
		return
	}
	owner, name, _ := strings.Cut(repo, "/")
	githubTag := &latest.GithubTag{
		Owner:      owner,
		Repository: name,
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Update check failed: %v\n", err)
		return
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Printf("👉 Download it from https://github.com/%s/releases\n", repo)
	} else {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dtv [options] <annotated-file | ->\n\n")
		fmt.Fprintf(os.Stderr, "dtv shows where every line of compiled device-tree output came from.\n")
		fmt.Fprintf(os.Stderr, "Input is dtc output produced with --annotate (e.g. cpp ... | dtc -I dts -O dts -T -T).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  dtv board.dts.annotated            # Browse in the terminal\n")
		fmt.Fprintf(os.Stderr, "  dtv --report board.dts.annotated   # Print a provenance report\n")
		fmt.Fprintf(os.Stderr, "  dtv -r -o r.txt board.dts.annotated\n")
		fmt.Fprintf(os.Stderr, "  dtc ... | dtv --json -             # Index standard input as JSON\n")
		fmt.Fprintf(os.Stderr, "  dtv --web board.dts.annotated      # Serve the JSON API\n")
	}

	jsonFlag := pflag.BoolP("json", "j", false, "Output the provenance index as JSON")
	reportFlag := pflag.BoolP("report", "r", false, "Generate a provenance report (CLI mode)")
	outputFlag := pflag.StringP("output", "o", "", "Save report to the specified file (combined with --report)")
	verboseFlag := pflag.BoolP("verbose", "v", false, "Include every output line in the report")
	webFlag := pflag.BoolP("web", "w", false, "Serve the JSON API (see --addr)")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.BoolP("update", "u", false, "Check for a newer release")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	config.RegisterFlags(pflag.CommandLine)
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("dtv version %s\n", model.Version)
		return
	}

	cfg, err := config.Load(pflag.CommandLine)
	if err != nil {
		fail(err)
	}

	if *updateFlag {
		checkUpdate(cfg.UpdateRepo, model.Version)
		return
	}

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}
	source := pflag.Arg(0)

	tuiMode := !*reportFlag && !*jsonFlag && !*webFlag
	logCloser, err = config.SetupLogger(cfg, tuiMode)
	if err != nil {
		fail(err)
	}
	defer closeLog()

	session := annotation.NewSession()

	if *webFlag {
		loadOrExit(session, source)
		if err := web.StartServer(cfg.Addr, session); err != nil {
			fail(err)
		}
		return
	}

	if *reportFlag {
		runReportMode(session, source, *outputFlag, *verboseFlag)
		return
	}

	if *jsonFlag {
		runJsonMode(session, source)
		return
	}

	// Default: TUI
	runTuiMode(session, source, cfg.ContextLines)
}

func loadOrExit(session *annotation.Session, source string) *annotation.Index {
	var (
		idx *annotation.Index
		err error
	)
	if source == annotation.StdinSource {
		idx, err = session.LoadReader(os.Stdin, source)
	} else {
		idx, err = session.Load(source)
	}
	if err != nil {
		fail(err)
	}
	return idx
}

func runReportMode(session *annotation.Session, source, outputFile string, verbose bool) {
	idx := loadOrExit(session, source)
	report := annotation.GenerateReport(idx, verbose)

	if outputFile != "" {
		err := os.WriteFile(outputFile, []byte(report), 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report to %s: %v\n", outputFile, err)
			exit(1)
		}
		fmt.Printf("Report saved to %s\n", outputFile)
	} else {
		fmt.Println(report)
	}
}

func runJsonMode(session *annotation.Session, source string) {
	idx := loadOrExit(session, source)

	out := struct {
		Summary annotation.Summary `json:"summary"`
		Lines   []model.OutputLine `json:"lines"`
	}{
		Summary: annotation.Summarize(idx),
		Lines:   idx.Lines(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fail(err)
	}
}

func runTuiMode(session *annotation.Session, source string, contextLines int) {
	var opts []tea.ProgramOption
	opts = append(opts, tea.WithAltScreen())
	if source == annotation.StdinSource {
		// The keyboard has to come from the terminal once stdin is consumed
		loadOrExit(session, source)
		opts = append(opts, tea.WithInputTTY())
	}

	m := tui.InitialModel(session, source, contextLines)
	p := tea.NewProgram(m, opts...)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		exit(1)
	}
}

// logCloser releases the log file opened by --log-file.
var logCloser io.Closer

func closeLog() {
	if logCloser == nil {
		return
	}
	if err := logCloser.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", err)
	}
	logCloser = nil
}

// exit skips deferred calls, so the log file is closed first.
func exit(code int) {
	closeLog()
	os.Exit(code)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exit(1)
}
