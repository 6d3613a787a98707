// Command gametracker-ui is the desktop client for the game catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"gametracker/internal/catalog"
	"gametracker/internal/clock"
	"gametracker/internal/config"
	"gametracker/internal/confirm"
	"gametracker/internal/library"
	"gametracker/internal/logger"
	"gametracker/internal/models"
	"gametracker/internal/notify"
	"gametracker/internal/reviews"
	"gametracker/internal/search"
)

const anyOption = "Any"

type ui struct {
	app      fyne.App
	window   fyne.Window
	client   *catalog.Client
	confirms *confirm.Manager
	notifier *statusNotifier
	library  *library.Controller
	search   *search.Controller
	logger   *zap.Logger
	ctx      context.Context

	// one reviews window per game; touched only on the UI goroutine
	reviewWindows map[string]fyne.Window
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLog.Sync()

	a := app.New()
	w := a.NewWindow("Game Tracker")
	w.Resize(fyne.NewSize(1200, 800))

	u := &ui{
		app:    a,
		window: w,
		client: catalog.NewClient(cfg.Client.APIBaseURL, cfg.Client.APITimeout, zapLog),
		logger: zapLog,
		ctx:    context.Background(),

		reviewWindows: make(map[string]fyne.Window),
	}
	u.notifier = newStatusNotifier(w, zapLog)
	u.confirms = confirm.NewManager(clock.Real{}, cfg.Client.ConfirmTimeout, u.notifier, zapLog)
	u.library = library.NewController(u.client, u.confirms, u.notifier, zapLog)
	u.search = search.NewController(u.client, search.Options{
		Debounce: cfg.Client.SearchDebounce,
		Notifier: u.notifier,
		Logger:   zapLog,
	})
	defer u.search.Close()

	w.SetContent(u.mainScreen())
	u.search.Refresh()

	w.ShowAndRun()
}

func (u *ui) mainScreen() fyne.CanvasObject {
	loginBtn := widget.NewButton("Owner login", u.showLogin)
	topBar := container.NewHBox(widget.NewLabelWithStyle("Game Tracker", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), loginBtn)

	tabs := container.NewAppTabs(
		container.NewTabItem("Library", u.libraryView()),
		container.NewTabItem("Search", u.searchView()),
	)

	bottom := container.NewVBox(u.promptsView(), u.notifier.label)
	return container.NewBorder(topBar, bottom, nil, nil, tabs)
}

func (u *ui) showLogin() {
	password := widget.NewPasswordEntry()
	dialog.ShowForm("Owner login", "Login", "Cancel",
		[]*widget.FormItem{{Text: "Password:", Widget: password}},
		func(ok bool) {
			if !ok {
				return
			}
			go func() {
				if err := u.client.Login(u.ctx, password.Text); err != nil {
					notify.Error(u.notifier, "Login failed.")
					return
				}
				notify.Success(u.notifier, "Logged in.")
			}()
		}, u.window)
}

// promptsView lists the open deletion prompts with their two actions
func (u *ui) promptsView() fyne.CanvasObject {
	box := container.NewVBox()
	render := func() {
		box.Objects = nil
		for _, p := range u.confirms.Pending() {
			box.Add(container.NewHBox(
				widget.NewLabel(fmt.Sprintf("Delete %s?", strings.ToLower(p.Label()))),
				widget.NewButton("Confirm", func() { go func() { _ = p.Confirm(u.ctx) }() }),
				widget.NewButton("Cancel", func() { _ = p.Cancel() }),
			))
		}
		box.Refresh()
	}
	u.confirms.OnChange(func() { fyne.Do(render) })
	return box
}

func (u *ui) libraryView() fyne.CanvasObject {
	var games []models.Game

	list := widget.NewList(
		func() int { return len(games) },
		func() fyne.CanvasObject {
			return container.NewVBox(widget.NewLabel("Title"), widget.NewLabel("Details"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			row := obj.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(games[id].Title)
			row.Objects[1].(*widget.Label).SetText(gameLine(games[id]))
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		u.library.Select(games[id])
		list.UnselectAll()
	}

	var (
		details   dialog.Dialog
		detailsID string
	)
	u.library.OnChange(func() {
		fyne.Do(func() {
			games = u.library.Games()
			list.Refresh()

			game, ok := u.library.Selected()
			if details != nil && (!ok || game.ID != detailsID) {
				d := details
				details, detailsID = nil, ""
				d.Hide()
			}
			if ok && details == nil {
				details, detailsID = u.detailsDialog(game), game.ID
				details.Show()
			}
		})
	})

	summary := widget.NewLabel("")
	reload := func() {
		go func() {
			_ = u.library.Load(u.ctx)
			stats, err := u.client.Stats(u.ctx)
			if err != nil {
				return
			}
			fyne.Do(func() {
				summary.SetText(fmt.Sprintf("%d games · %d completed · %d reviews · avg %.1f",
					stats.TotalGames, stats.CompletedGames, stats.TotalReviews, stats.AverageScore))
			})
		}()
	}
	reload()

	addBtn := widget.NewButton("Add game", func() { u.showGameForm("") })
	refreshBtn := widget.NewButton("Refresh", reload)

	return container.NewBorder(container.NewHBox(addBtn, refreshBtn, summary), nil, nil, nil, list)
}

func (u *ui) detailsDialog(g models.Game) dialog.Dialog {
	status := "Pending"
	if g.Completed {
		status = "Completed"
	}
	info := widget.NewLabel(fmt.Sprintf("%s\n%s\nDeveloper: %s\nStatus: %s\n\n%s",
		g.Title, gameLine(g), g.Developer, status, g.Description))
	info.Wrapping = fyne.TextWrapWord

	content := container.NewVBox(
		info,
		container.NewHBox(
			widget.NewButton("Edit", func() { u.showGameForm(g.ID) }),
			widget.NewButton("Reviews", func() { u.showReviews(g) }),
			widget.NewButton("Delete", func() { u.library.RequestDelete(g.ID) }),
		),
	)

	d := dialog.NewCustom(g.Title, "Close", content, u.window)
	d.SetOnClosed(func() {
		if selected, ok := u.library.Selected(); ok && selected.ID == g.ID {
			u.library.CloseDetails()
		}
	})
	d.Resize(fyne.NewSize(500, 400))
	return d
}

func (u *ui) showGameForm(id string) {
	form := library.NewForm(u.client, u.notifier, u.logger)

	title := widget.NewEntry()
	developer := widget.NewEntry()
	genre := widget.NewSelect(genreOptions(false), nil)
	platform := widget.NewSelect(platformOptions(false), nil)
	year := widget.NewEntry()
	cover := widget.NewEntry()
	cover.SetPlaceHolder("https://...")
	description := widget.NewMultiLineEntry()
	completed := widget.NewCheck("Completed", nil)

	fill := func(in models.GameInput) {
		title.SetText(in.Title)
		developer.SetText(in.Developer)
		genre.SetSelected(string(in.Genre))
		platform.SetSelected(string(in.Platform))
		year.SetText(strconv.Itoa(in.ReleaseYear))
		cover.SetText(in.CoverImage)
		description.SetText(in.Description)
		completed.SetChecked(in.Completed)
	}
	fill(form.Fields())

	heading := "Add game"
	if id != "" {
		heading = "Edit game"
		go func() {
			if err := form.Load(u.ctx, id); err == nil {
				fyne.Do(func() { fill(form.Fields()) })
			}
		}()
	}

	items := []*widget.FormItem{
		{Text: "Title", Widget: title},
		{Text: "Developer", Widget: developer},
		{Text: "Genre", Widget: genre},
		{Text: "Platform", Widget: platform},
		{Text: "Release year", Widget: year},
		{Text: "Cover image", Widget: cover},
		{Text: "Description", Widget: description},
		{Text: "", Widget: completed},
	}

	dialog.ShowForm(heading, "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		values := map[string]string{
			library.FieldTitle:       title.Text,
			library.FieldDeveloper:   developer.Text,
			library.FieldGenre:       genre.Selected,
			library.FieldPlatform:    platform.Selected,
			library.FieldReleaseYear: year.Text,
			library.FieldCoverImage:  cover.Text,
			library.FieldDescription: description.Text,
			library.FieldCompleted:   strconv.FormatBool(completed.Checked),
		}
		for field, value := range values {
			if err := form.UpdateField(field, value); err != nil {
				return
			}
		}
		go func() {
			if _, err := form.Submit(u.ctx); err != nil {
				return
			}
			u.library.CloseDetails()
			_ = u.library.Load(u.ctx)
		}()
	}, u.window)
}

func (u *ui) searchView() fyne.CanvasObject {
	update := func(field, value string) {
		_ = u.search.UpdateCriterion(field, value)
	}

	title := widget.NewEntry()
	title.SetPlaceHolder("Search by title...")
	title.OnChanged = func(s string) { update(search.FieldTitle, s) }

	genre := widget.NewSelect(genreOptions(true), func(s string) { update(search.FieldGenre, fromOption(s)) })
	genre.SetSelected(anyOption)
	platform := widget.NewSelect(platformOptions(true), func(s string) { update(search.FieldPlatform, fromOption(s)) })
	platform.SetSelected(anyOption)

	completion := widget.NewSelect([]string{"All", "Completed", "Pending"}, func(s string) {
		switch s {
		case "Completed":
			update(search.FieldCompleted, string(search.CompletionCompleted))
		case "Pending":
			update(search.FieldCompleted, string(search.CompletionPending))
		default:
			update(search.FieldCompleted, string(search.CompletionAll))
		}
	})
	completion.SetSelected("All")

	sortBy := widget.NewSelect([]string{string(models.SortByTitle), string(models.SortByPlatform)}, func(s string) { update(search.FieldSortBy, s) })
	sortBy.SetSelected(string(models.SortByTitle))
	order := widget.NewSelect([]string{string(models.OrderAsc), string(models.OrderDesc)}, func(s string) { update(search.FieldOrder, s) })
	order.SetSelected(string(models.OrderAsc))

	var results []models.Game
	list := widget.NewList(
		func() int { return len(results) },
		func() fyne.CanvasObject { return widget.NewLabel("Title") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(results[id].Title + "  (" + gameLine(results[id]) + ")")
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		u.library.Select(results[id])
		list.UnselectAll()
	}

	state := widget.NewLabel("")
	u.search.OnChange(func() {
		fyne.Do(func() {
			results = u.search.Results()
			list.Refresh()
			switch {
			case u.search.Loading():
				state.SetText("Searching...")
			case u.search.EmptyState() == search.EmptyPrompt:
				state.SetText("Enter a search term or pick a filter.")
			case u.search.EmptyState() == search.EmptyNoMatch:
				state.SetText("No games match your filters.")
			default:
				state.SetText(fmt.Sprintf("%d games", len(results)))
			}
		})
	})

	filters := container.NewGridWithColumns(3,
		title, genre, platform,
		completion, sortBy, order,
	)
	return container.NewBorder(container.NewVBox(filters, state), nil, nil, nil, list)
}

func (u *ui) showReviews(g models.Game) {
	if w, ok := u.reviewWindows[g.ID]; ok {
		w.RequestFocus()
		return
	}

	w := u.app.NewWindow("Reviews: " + g.Title)
	w.Resize(fyne.NewSize(700, 600))
	u.reviewWindows[g.ID] = w
	w.SetOnClosed(func() { delete(u.reviewWindows, g.ID) })

	ctl := reviews.NewController(g.ID, u.client, u.confirms, u.notifier, u.logger)

	header := widget.NewLabelWithStyle(g.Title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	mode := widget.NewLabel("")

	var list []models.Review
	reviewList := widget.NewList(
		func() int { return len(list) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, nil,
				container.NewHBox(widget.NewButton("Edit", nil), widget.NewButton("Delete", nil)),
				widget.NewLabel("Review"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			r := list[id]
			row := obj.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(reviewLine(r))
			buttons := row.Objects[1].(*fyne.Container)
			buttons.Objects[0].(*widget.Button).OnTapped = func() { ctl.EnterEditMode(r) }
			buttons.Objects[1].(*widget.Button).OnTapped = func() { ctl.RequestDelete(r.ID) }
		},
	)

	// syncing suppresses widget callbacks while the form is filled from the draft
	var syncing bool
	score := widget.NewSelect([]string{"1", "2", "3", "4", "5"}, func(s string) {
		if !syncing {
			_ = ctl.UpdateField(reviews.FieldScore, s)
		}
	})
	text := widget.NewMultiLineEntry()
	text.OnChanged = func(s string) {
		if !syncing {
			ctl.SetText(s)
		}
	}
	hours := widget.NewEntry()
	hours.OnChanged = func(s string) {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); !syncing && err == nil && v >= 0 {
			_ = ctl.SetHoursPlayed(v)
		}
	}
	difficulty := widget.NewSelect(difficultyOptions(), func(s string) {
		if !syncing {
			_ = ctl.SetDifficulty(models.Difficulty(s))
		}
	})
	recommend := widget.NewCheck("Would recommend", func(b bool) {
		if !syncing {
			ctl.SetWouldRecommend(b)
		}
	})

	render := func() {
		list = ctl.Reviews()
		reviewList.Refresh()
		if game := ctl.Game(); game.Title != "" {
			header.SetText(game.Title + "  (" + gameLine(game) + ")")
		}

		if ctl.Mode() == reviews.ModeEdit {
			mode.SetText("Editing review")
		} else {
			mode.SetText("New review")
		}

		d := ctl.Draft()
		syncing = true
		score.SetSelected(strconv.Itoa(d.Score))
		if text.Text != d.Text {
			text.SetText(d.Text)
		}
		difficulty.SetSelected(string(d.Difficulty))
		recommend.SetChecked(d.WouldRecommend)
		if v, err := strconv.ParseFloat(strings.TrimSpace(hours.Text), 64); err != nil || v != d.HoursPlayed {
			hours.SetText(strconv.FormatFloat(d.HoursPlayed, 'f', -1, 64))
		}
		syncing = false
	}
	ctl.OnChange(func() { fyne.Do(render) })
	render()

	submit := widget.NewButton("Submit", func() {
		if err := ctl.UpdateField(reviews.FieldHoursPlayed, hours.Text); err != nil {
			return
		}
		go func() { _ = ctl.Submit(u.ctx) }()
	})
	cancel := widget.NewButton("Cancel edit", ctl.CancelEdit)

	form := container.NewVBox(
		mode,
		widget.NewForm(
			widget.NewFormItem("Score", score),
			widget.NewFormItem("Review", text),
			widget.NewFormItem("Hours played", hours),
			widget.NewFormItem("Difficulty", difficulty),
			widget.NewFormItem("", recommend),
		),
		container.NewHBox(submit, cancel),
	)

	split := container.NewVSplit(reviewList, form)
	split.SetOffset(0.5)
	w.SetContent(container.NewBorder(header, nil, nil, nil, split))
	w.Show()

	go func() { _ = ctl.Load(u.ctx) }()
}

// statusNotifier shows success and info notices in a status line and errors
// in a dialog.
type statusNotifier struct {
	window fyne.Window
	label  *widget.Label
	logger *zap.Logger

	mu      sync.Mutex
	showing string
}

func newStatusNotifier(w fyne.Window, logger *zap.Logger) *statusNotifier {
	return &statusNotifier{window: w, label: widget.NewLabel(""), logger: logger}
}

// Notify shows errors in a dialog and other notices on the status line
func (n *statusNotifier) Notify(notice notify.Notice) {
	n.logger.Debug("notice", zap.String("notice_level", string(notice.Level)), zap.String("message", notice.Message))

	n.mu.Lock()
	n.showing = notice.Key
	n.mu.Unlock()

	fyne.Do(func() {
		if notice.Level == notify.LevelError {
			dialog.ShowError(errors.New(notice.Message), n.window)
			return
		}
		n.label.SetText(notice.Message)
	})
}

// Dismiss clears the status line if it still shows key
func (n *statusNotifier) Dismiss(key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.showing != key {
		return
	}
	n.showing = ""
	fyne.Do(func() { n.label.SetText("") })
}

func gameLine(g models.Game) string {
	return fmt.Sprintf("%s · %s · %d", g.Genre, g.Platform, g.ReleaseYear)
}

func reviewLine(r models.Review) string {
	line := fmt.Sprintf("%s  %s  %gh", strings.Repeat("★", r.Score), r.Difficulty, r.HoursPlayed)
	if r.WouldRecommend {
		line += "  recommended"
	}
	if r.Text != "" {
		line += "\n" + r.Text
	}
	return line
}

func genreOptions(withAny bool) []string {
	var out []string
	if withAny {
		out = append(out, anyOption)
	}
	for _, g := range models.Genres {
		out = append(out, string(g))
	}
	return out
}

func platformOptions(withAny bool) []string {
	var out []string
	if withAny {
		out = append(out, anyOption)
	}
	for _, p := range models.Platforms {
		out = append(out, string(p))
	}
	return out
}

func difficultyOptions() []string {
	out := make([]string, 0, len(models.Difficulties))
	for _, d := range models.Difficulties {
		out = append(out, string(d))
	}
	return out
}

func fromOption(s string) string {
	if s == anyOption {
		return ""
	}
	return s
}
