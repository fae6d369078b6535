package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"lazy14/pkg/resource"
	"lazy14/pkg/settings"
)

var (
	flagSettings = settings.Default()
	configPath   string
)

func main() {
	cmd := &cobra.Command{
		Use:           "lazy14show <file|url>",
		Short:         "Show a page and scroll its lazy container with a slider",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	settings.AddFlags(cmd.Flags(), &flagSettings, &configPath)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	s, err := settings.Resolve(cmd.Flags(), flagSettings, configPath)
	if err != nil {
		return err
	}
	opts := []resource.PageOption{resource.WithViewport(s.Width, s.Height)}
	if s.Container != "" {
		opts = append(opts, resource.WithLazyContainer(s.Container, s.LazyOptions()...))
	}
	page, err := resource.OpenTarget(cmd.Context(), args[0], opts...)
	if err != nil {
		return err
	}
	page.Load()

	target := page.ScrollContainer(s.Container)
	if target == nil {
		return fmt.Errorf("no scroll container: pass --container or create a LazyLoader in the page")
	}

	a := app.New()
	w := a.NewWindow("lazy14: " + args[0])
	w.Resize(fyne.NewSize(float32(s.Width), float32(s.Height)+80))

	canvasImg := canvas.NewImageFromImage(page.Render())
	canvasImg.FillMode = canvas.ImageFillOriginal
	status := widget.NewLabel("")

	refresh := func() {
		canvasImg.Image = page.Render()
		canvasImg.Refresh()
		status.SetText(summary(page))
	}

	maxScroll := page.Layout().MaxScroll(target)
	slider := widget.NewSlider(0, max(maxScroll.Y, 1))
	slider.Step = 1
	slider.OnChanged = func(v float64) {
		off := page.ScrollElement(target, page.Layout().ScrollOffset(target).X, v)
		log.Debugf("viewer: scrollTop %.0f", off.Y)
		refresh()
	}
	refresh()

	content := container.NewBorder(slider, status, nil, nil, canvasImg)
	w.SetContent(content)
	w.ShowAndRun()
	return nil
}

func summary(page *resource.Page) string {
	loaded, total := 0, 0
	for _, st := range page.Images() {
		total++
		if st.Loaded {
			loaded++
		}
	}
	return fmt.Sprintf("%d of %d images loaded", loaded, total)
}
