package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shennong-ai/shennong/internal/config"
	"github.com/shennong-ai/shennong/internal/logging"
	"github.com/shennong-ai/shennong/internal/session"
)

const replPrompt = "shennong> "

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive research session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			deps, err := buildRuntime(cfg)
			if err != nil {
				return err
			}

			language, err := session.ParseLanguage(cfg.UI.Language)
			if err != nil {
				return err
			}
			sess := session.New(cfg.Model, language)

			r := &repl{deps: deps, sess: sess}
			return r.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

type repl struct {
	deps *runtimeDeps
	sess *session.Session
}

// replChannel abstracts line input so the loop works both on a real
// terminal (readline) and on piped stdin.
type replChannel interface {
	Read() (string, error)
	Write(text string) error
	Meta(text string) error
}

func (r *repl) run(ctx context.Context, in io.Reader, out io.Writer) error {
	var channel replChannel
	if rlChannel, err := newReadlineChannel(in, out); err == nil {
		channel = rlChannel
	} else {
		channel = &stdioChannel{in: bufio.NewReader(in), out: out}
	}
	if closer, ok := channel.(io.Closer); ok {
		defer closer.Close()
	}

	channel.Meta(fmt.Sprintf(
		"Shennong research REPL. Model %s, language %s.\nCommands: /model /lang /tools /models /usage /new /quit",
		r.sess.Model(), r.sess.Language(),
	))

	for {
		raw, err := channel.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		input := strings.TrimSpace(raw)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := r.command(input, channel)
			if err != nil {
				channel.Meta(fmt.Sprintf("error: %v", err))
			}
			if quit {
				return nil
			}
			continue
		}

		res, err := r.deps.newAgent().Run(ctx, r.sess, input)
		if err != nil {
			if res != nil && res.Answer != "" {
				channel.Write(res.Answer)
			}
			channel.Meta(fmt.Sprintf("error: %v", err))
			// The failed exchange still appended turns worth keeping.
			r.persist()
			continue
		}
		channel.Write(res.Answer)
		for _, flag := range res.Flags {
			channel.Meta("note: " + flag)
		}
		channel.Meta(usageLine(res, r.deps))
		r.persist()
	}
}

func (r *repl) command(input string, channel replChannel) (quit bool, err error) {
	field := strings.Fields(input)
	arg := ""
	if len(field) > 1 {
		arg = field[1]
	}

	switch field[0] {
	case "/quit", "/exit":
		return true, nil
	case "/model":
		if arg == "" {
			return false, channel.Meta("model: " + r.sess.Model())
		}
		info, err := r.deps.providers.Catalog().Resolve(arg)
		if err != nil {
			return false, err
		}
		r.sess.SetModel(info.ID)
		r.persist()
		return false, channel.Meta(fmt.Sprintf("switched to %s (%s)", info.ID, info.Provider))
	case "/lang":
		if arg == "" {
			return false, channel.Meta("language: " + string(r.sess.Language()))
		}
		lang, err := session.ParseLanguage(arg)
		if err != nil {
			return false, err
		}
		r.sess.SetLanguage(lang)
		r.persist()
		return false, channel.Meta("language set to " + arg)
	case "/usage":
		return false, channel.Meta(r.deps.ledger.FormatSummary())
	case "/new":
		r.sess = session.New(r.sess.Model(), r.sess.Language())
		return false, channel.Meta("started session " + r.sess.ID)
	case "/tools":
		var b strings.Builder
		for _, info := range r.deps.toolReg.List() {
			fmt.Fprintf(&b, "%-32s %s\n", info.Name, info.Status)
		}
		return false, channel.Meta(strings.TrimRight(b.String(), "\n"))
	case "/models":
		var b strings.Builder
		writeModelTable(&b, r.deps)
		return false, channel.Meta(strings.TrimRight(b.String(), "\n"))
	default:
		return false, fmt.Errorf("unknown command %s", field[0])
	}
}

// persist rewrites the transcript after each completed exchange. Saving
// the whole file keeps model and language switches consistent with the
// meta record.
func (r *repl) persist() {
	path := session.Path(r.deps.cfg.HomeDir, r.sess.ID)
	if err := session.NewStore(path).Save(r.sess); err != nil {
		logging.Logger().Warn("persist session", "path", path, "err", err)
	}
}

type readlineChannel struct {
	rl  *readline.Instance
	out io.Writer
}

func newReadlineChannel(in io.Reader, out io.Writer) (*readlineChannel, error) {
	stdin, ok := in.(io.ReadCloser)
	if !ok {
		return nil, fmt.Errorf("stdin is not read-closer")
	}
	inFile, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(inFile.Fd())) {
		return nil, fmt.Errorf("stdin is not terminal")
	}
	outFile, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(outFile.Fd())) {
		return nil, fmt.Errorf("stdout is not terminal")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     filepath.Join(os.TempDir(), ".shennong_history"),
		HistoryLimit:    200,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           stdin,
		Stdout:          out,
		Stderr:          out,
	})
	if err != nil {
		return nil, err
	}
	return &readlineChannel{rl: rl, out: out}, nil
}

func (c *readlineChannel) Read() (string, error) {
	line, err := c.rl.Readline()
	if err != nil {
		if err == readline.ErrInterrupt || err == io.EOF {
			return "", io.EOF
		}
		return "", err
	}
	return line, nil
}

func (c *readlineChannel) Write(text string) error {
	_, err := fmt.Fprintf(c.out, "%s\n\n", text)
	return err
}

func (c *readlineChannel) Meta(text string) error {
	_, err := color.New(color.Faint).Fprintf(c.out, "%s\n", text)
	return err
}

func (c *readlineChannel) Close() error {
	return c.rl.Close()
}

type stdioChannel struct {
	in  *bufio.Reader
	out io.Writer
}

func (c *stdioChannel) Read() (string, error) {
	if _, err := fmt.Fprint(c.out, replPrompt); err != nil {
		return "", err
	}
	line, err := c.in.ReadString('\n')
	if err != nil {
		if len(line) > 0 {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

func (c *stdioChannel) Write(text string) error {
	_, err := fmt.Fprintf(c.out, "%s\n\n", text)
	return err
}

func (c *stdioChannel) Meta(text string) error {
	_, err := fmt.Fprintf(c.out, "%s\n", text)
	return err
}
