// Package main is a small terminal playground for the modal layer: it
// opens a file (or sample text) in an in-memory editor, loads a
// keybinding config, and routes terminal keys through a session.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/bind"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/config"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/editor"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/key"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/session"
)

var version = "dev"

func main() {
	os.Exit(run())
}

type options struct {
	configPath string
	filePath   string
}

func run() int {
	opts, showVersion := parseFlags()
	if showVersion {
		fmt.Println("modalkeys", version)
		return 0
	}

	table, err := loadBindings(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	text := sampleText
	if opts.filePath != "" {
		data, err := os.ReadFile(opts.filePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		text = string(data)
	}

	host := editor.NewMemory(text)
	sess := session.New(host, session.Options{Bindings: table})

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init terminal: %v\n", err)
		return 1
	}
	defer screen.Fini()

	for {
		draw(screen, host, sess)
		ev := screen.PollEvent()
		switch tev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if tev.Key() == tcell.KeyCtrlC {
				return 0
			}
			kev, ok := toKeyEvent(tev)
			if !ok {
				continue
			}
			handleKey(host, sess, kev)
		}
	}
}

// handleKey routes one key and emulates the change signals a real host
// would deliver, by diffing text and selections around the event.
func handleKey(host *editor.Memory, sess *session.Session, kev key.Event) {
	textBefore := host.Text()
	selsBefore := host.Selections()

	if sess.Mode() == "insert" && kev.IsRune() {
		// Insert mode types directly; only named keys reach bindings.
		_ = host.Exec("type", map[string]any{"text": string(kev.Rune)})
	} else {
		// Errors are already surfaced through host messages.
		_ = sess.HandleKey(kev)
	}

	if host.Text() != textBefore {
		sess.NoteTextChanged()
	} else if selectionsChanged(selsBefore, host.Selections()) {
		sess.NoteSelectionChanged(editor.AnyNonEmpty(host.Selections()))
	}
}

func selectionsChanged(before, after []editor.Selection) bool {
	if len(before) != len(after) {
		return true
	}
	for i := range before {
		if !before[i].Equal(after[i]) {
			return true
		}
	}
	return false
}

func parseFlags() (options, bool) {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to keybinding file (toml, yaml or json)")
	flag.StringVar(&opts.configPath, "c", "", "Path to keybinding file (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if flag.NArg() > 0 {
		opts.filePath = flag.Arg(0)
	}
	return opts, showVersion
}

func loadBindings(path string) (*bind.Table, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.Build(defaultBindings)
}

// toKeyEvent converts a terminal key event to the core's form.
func toKeyEvent(ev *tcell.EventKey) (key.Event, bool) {
	switch ev.Key() {
	case tcell.KeyRune:
		return key.NewRuneEvent(ev.Rune()), true
	case tcell.KeyEscape:
		return key.NewNamedEvent("escape"), true
	case tcell.KeyEnter:
		return key.NewNamedEvent("enter"), true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return key.NewNamedEvent("backspace"), true
	case tcell.KeyTab:
		return key.NewNamedEvent("tab"), true
	case tcell.KeyUp:
		return key.NewNamedEvent("up"), true
	case tcell.KeyDown:
		return key.NewNamedEvent("down"), true
	case tcell.KeyLeft:
		return key.NewNamedEvent("left"), true
	case tcell.KeyRight:
		return key.NewNamedEvent("right"), true
	default:
		return key.Event{}, false
	}
}

func draw(screen tcell.Screen, host *editor.Memory, sess *session.Session) {
	screen.Clear()
	width, height := screen.Size()
	textRows := height - 1
	if textRows < 1 {
		textRows = 1
	}

	style := tcell.StyleDefault
	selStyle := style.Reverse(true)

	sels := host.Selections()
	for row := 0; row < textRows && row < host.LineCount(); row++ {
		line := []rune(host.Line(row))
		for col := 0; col < len(line) && col < width; col++ {
			st := style
			if inSelection(sels, row, col) {
				st = selStyle
			}
			screen.SetContent(col, row, line[col], nil, st)
		}
	}

	drawStatus(screen, host, sess, width, height-1)

	primary := sels[0].Active
	screen.ShowCursor(primary.Char, primary.Line)
	screen.Show()
}

func drawStatus(screen tcell.Screen, host *editor.Memory, sess *session.Session, width, row int) {
	status := "-- " + strings.ToUpper(sess.EffectiveMode()) + " --"
	if s := sess.Status(); s != "" {
		status += "  " + s
	}
	if msg := host.LastMessage(); msg != "" {
		status += "  " + msg
	}
	st := tcell.StyleDefault.Bold(true)
	for col, r := range []rune(status) {
		if col >= width {
			break
		}
		screen.SetContent(col, row, r, nil, st)
	}
}

func inSelection(sels []editor.Selection, line, char int) bool {
	p := editor.Position{Line: line, Char: char}
	for _, sel := range sels {
		if sel.Range().Contains(p) {
			return true
		}
	}
	return false
}

const sampleText = `Welcome to the modalkeys playground.
Use hjkl to move, v to select, / to search.
Press dd to delete a line, . to repeat, Ctrl-C to quit.
call(arg1, arg2)
Foo bar foo`

// defaultBindings is a small vim-flavored table used when no config
// file is given.
var defaultBindings = config.File{
	Keybindings: map[string]any{
		"normal::h": "cursorLeft",
		"normal::j": "cursorDown",
		"normal::k": "cursorUp",
		"normal::l": "cursorRight",
		"visual::h": "cursorLeftSelect",
		"visual::l": "cursorRightSelect",

		"normal::i":  "enterInsert",
		"normal::v":  "toggleSelection",
		"visual::v":  "toggleSelection",
		"normal::x":  "deleteRight",
		"normal::dd": "deleteLine",
		"visual::d":  "deleteSelection",
		"normal::.":  "repeatLastChange",

		"normal::/": map[string]any{
			"command": "search",
			"args":    map[string]any{"wrapAround": true},
		},
		"normal::n": "nextMatch",
		"normal::N": "previousMatch",

		"normal::f": map[string]any{
			"command": "captureChar",
			"args": map[string]any{
				"acceptAfter": 1,
				"executeAfter": map[string]any{
					"command":      "search",
					"computedArgs": map[string]any{"text": "captured"},
				},
			},
		},

		"normal::b": map[string]any{
			"command": "selectBetween",
			"args":    map[string]any{"from": "(", "to": ")"},
		},

		"insert::<escape>": "enterNormal",
		"visual::<escape>": "cancelSelection",
	},
}
