// Package ui provides the terminal settings form for vidcard.
package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/iconidentify/vidcard/internal/domain"
)

const (
	labelThumbnail   = "Show thumbnail"
	labelChannelIcon = "Show channel icon"
	labelAPIKey      = "YouTube API key"
)

// SettingsStore loads and persists settings.
type SettingsStore interface {
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) error
}

// App is the settings TUI.
type App struct {
	app   *tview.Application
	pages *tview.Pages
	store SettingsStore

	form      *tview.Form
	keyField  *tview.InputField
	statusBar *tview.TextView

	// Values being edited; persisted only on Save.
	draft domain.Settings
}

// NewApp loads the current settings and builds the form.
func NewApp(ctx context.Context, store SettingsStore) (*App, error) {
	current, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	a := &App{
		app:   tview.NewApplication(),
		pages: tview.NewPages(),
		store: store,
		draft: current,
	}
	a.setupUI()
	return a, nil
}

func (a *App) setupUI() {
	header := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[::b]vidcard settings")
	header.SetBackgroundColor(tcell.ColorDarkBlue)

	footer := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[yellow]Tab[white]:Next field [yellow]Space[white]:Toggle [yellow]Enter[white]:Activate [yellow]Esc[white]:Quit")
	footer.SetBackgroundColor(tcell.ColorDarkBlue)

	a.statusBar = tview.NewTextView().SetDynamicColors(true)
	a.statusBar.SetBackgroundColor(tcell.ColorDarkGreen)

	a.form = tview.NewForm().
		AddCheckbox(labelThumbnail, a.draft.ShowThumbnail, func(checked bool) {
			a.draft.ShowThumbnail = checked
		}).
		AddCheckbox(labelChannelIcon, a.draft.ShowChannelIcon, a.setChannelIcon).
		AddPasswordField(labelAPIKey, a.draft.APIKey, 48, '*', func(text string) {
			a.draft.APIKey = text
		}).
		AddButton("Save", a.save).
		AddButton("Quit", a.app.Stop)
	a.form.SetBorder(true).SetTitle(" Enrichment ")
	a.form.SetCancelFunc(a.app.Stop)

	a.keyField = a.form.GetFormItemByLabel(labelAPIKey).(*tview.InputField)
	a.keyField.SetDisabled(!a.draft.ShowChannelIcon)

	a.pages.AddPage("form", a.form, true, true)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false).
		AddItem(footer, 1, 0, false)

	a.app.SetRoot(layout, true)
}

// setChannelIcon follows the channel icon toggle. The key field only
// accepts input while icons are on.
func (a *App) setChannelIcon(checked bool) {
	a.draft.ShowChannelIcon = checked
	if a.keyField != nil {
		a.keyField.SetDisabled(!checked)
	}
}

func (a *App) save() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	notice, ok := saveDraft(ctx, a.store, a.draft)
	if !ok {
		a.showNotice(notice)
		return
	}
	a.statusBar.SetText(" [white]" + notice + " (" + time.Now().Format("15:04:05") + ")")
}

// saveDraft persists s and returns the one-line message to show.
func saveDraft(ctx context.Context, store SettingsStore, s domain.Settings) (string, bool) {
	err := store.Save(ctx, s)
	switch {
	case err == nil:
		return "Settings saved.", true
	case errors.Is(err, domain.ErrChannelIconRequiresKey):
		return domain.ChannelIconKeyNotice, false
	default:
		return "Could not save settings: " + err.Error(), false
	}
}

func (a *App) showNotice(text string) {
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			a.pages.RemovePage("notice")
			a.app.SetFocus(a.form)
		})
	a.pages.AddPage("notice", modal, true, true)
}

// Run starts the event loop and blocks until the user quits.
func (a *App) Run() error {
	return a.app.Run()
}
