package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"lazy14/pkg/resource"
)

var (
	scrollSteps []string
	pngOutput   string

	scanCmd = &cobra.Command{
		Use:   "scan <file|url>",
		Short: "Load a page, scroll its container and report image states",
		Long: "scan loads the page, runs its scripts, fires the window load event, " +
			"applies each --scroll step to the container and prints the state of every lazily loaded image.",
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}
)

func init() {
	scanCmd.Flags().StringArrayVar(&scrollSteps, "scroll", nil, "scroll the container to X,Y; repeat for several steps")
	scanCmd.Flags().StringVar(&pngOutput, "png", "", "render the final state to this PNG file")
}

func runScan(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	steps, err := parseScrollSteps(scrollSteps)
	if err != nil {
		return err
	}

	page, err := openPage(cmd.Context(), args[0], s)
	if err != nil {
		return err
	}
	page.Load()

	if len(steps) > 0 {
		target := page.ScrollContainer(s.Container)
		if target == nil {
			return errors.New("--scroll needs a container: pass --container or create a LazyLoader in the page")
		}
		for _, st := range steps {
			off := page.ScrollElement(target, st[0], st[1])
			log.Debugf("scrolled to %.0f,%.0f", off.X, off.Y)
		}
	}

	if err := printImages(cmd, page.Images()); err != nil {
		return err
	}

	if pngOutput != "" {
		f, err := os.Create(pngOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", pngOutput, err)
		}
		if err := page.WritePNG(f); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", pngOutput, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", pngOutput, err)
		}
		log.Infof("rendered %dx%d to %s", s.Width, s.Height, pngOutput)
	}
	return nil
}

func parseScrollSteps(raw []string) ([][2]float64, error) {
	steps := make([][2]float64, 0, len(raw))
	for _, r := range raw {
		xs, ys, ok := strings.Cut(r, ",")
		if !ok {
			return nil, fmt.Errorf("invalid --scroll %q: want X,Y", r)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --scroll %q: %w", r, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --scroll %q: %w", r, err)
		}
		steps = append(steps, [2]float64{x, y})
	}
	return steps, nil
}

func printImages(cmd *cobra.Command, states []resource.ImageState) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONTAINER\tIMAGE\tLOADED\tVISIBLE\tSRC")
	for _, st := range states {
		loaded := "no"
		if st.Loaded {
			loaded = "yes"
		}
		visible := "no"
		if st.Visible {
			visible = "yes"
		}
		src := st.Src
		if src == "" {
			src = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", st.Container, st.ID, loaded, visible, src)
	}
	return w.Flush()
}
