package phconvert

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// AlternationHistogram bins the nanotimes of an acquisition over the full
// TCSPC range, together with the excitation windows used to classify each
// photon. In a pulsed-interleaved (nsALEX) measurement the donor and acceptor
// lasers occupy disjoint nanotime windows, so the histogram shows directly
// whether the configured windows sit on the two decay humps.
type AlternationHistogram struct {
	Dividers []float64
	Counts   []float64
	Donor    [2]int64
	Acceptor [2]int64
	Total    int
}

// NewAlternationHistogram bins photon nanotimes into the given number of
// equal-width bins spanning [0, TCSPCNumBins), widened when the acquisition
// comes from an instrument with a deeper TCSPC range.
func NewAlternationHistogram(photons *PhotonData, setup SetupPreset, bins int) (*AlternationHistogram, error) {
	if photons == nil || photons.Len() == 0 {
		return nil, &ErrEmptyPhotonData{}
	}
	if bins <= 0 {
		return nil, fmt.Errorf("histogram needs a positive bin count, got %d", bins)
	}

	nanotimes := make([]float64, photons.Len())
	for i, nt := range photons.Nanotimes {
		nanotimes[i] = float64(nt)
	}
	sort.Float64s(nanotimes)

	// stat.Histogram requires every sample below the highest divider.
	upper := float64(TCSPCNumBins)
	if max := nanotimes[len(nanotimes)-1]; max >= upper {
		upper = max + 1
	}

	dividers := make([]float64, bins+1)
	floats.Span(dividers, 0, upper)
	counts := stat.Histogram(nil, dividers, nanotimes, nil)

	return &AlternationHistogram{
		Dividers: dividers,
		Counts:   counts,
		Donor:    [2]int64{setup.DonorStart, setup.DonorStop},
		Acceptor: [2]int64{setup.AcceptorStart, setup.AcceptorStop},
		Total:    photons.Len(),
	}, nil
}

// CountWindows classifies every photon by its nanotime against the setup's
// donor and acceptor excitation windows.
func CountWindows(photons *PhotonData, setup SetupPreset) (donor, acceptor, unclassified int) {
	for _, nt := range photons.Nanotimes {
		t := int64(nt)
		switch {
		case t >= setup.DonorStart && t < setup.DonorStop:
			donor++
		case t >= setup.AcceptorStart && t < setup.AcceptorStop:
			acceptor++
		default:
			unclassified++
		}
	}
	return donor, acceptor, unclassified
}

func (h *AlternationHistogram) binCenters() []float64 {
	centers := make([]float64, len(h.Counts))
	for i := range h.Counts {
		centers[i] = (h.Dividers[i] + h.Dividers[i+1]) / 2
	}
	return centers
}

// windowFraction sums the counts of the bins whose centers fall inside the
// window and divides by the total photon count.
func (h *AlternationHistogram) windowFraction(window [2]int64) float64 {
	if h.Total == 0 {
		return 0
	}
	inWindow := 0.0
	for i, center := range h.binCenters() {
		if center >= float64(window[0]) && center < float64(window[1]) {
			inWindow += h.Counts[i]
		}
	}
	return inWindow / float64(h.Total)
}

func (h *AlternationHistogram) DonorFraction() float64 {
	return h.windowFraction(h.Donor)
}

func (h *AlternationHistogram) AcceptorFraction() float64 {
	return h.windowFraction(h.Acceptor)
}

// SavePlot renders the nanotime histogram as a line plot image. The format
// is deduced from the filename extension (.png, .svg, .pdf).
func (h *AlternationHistogram) SavePlot(filename string) error {
	p := plot.New()
	p.Title.Text = "TCSPC nanotime histogram"
	p.X.Label.Text = "Nanotime (TCSPC bin)"
	p.Y.Label.Text = "Photons"

	points := make(plotter.XYs, len(h.Counts))
	for i, center := range h.binCenters() {
		points[i].X = center
		points[i].Y = h.Counts[i]
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return err
	}
	p.Add(line)

	if err := p.Save(14*vg.Inch, 6*vg.Inch, filename); err != nil {
		return fmt.Errorf("error saving plot %q: %w", filename, err)
	}
	if configuration.Verbosity > 0 {
		logger.Info("saved nanotime histogram to "+filename, "alternation")
	}
	return nil
}

// RenderReport writes a standalone HTML page with an interactive bar chart
// of the nanotime histogram.
func (h *AlternationHistogram) RenderReport(w io.Writer) error {
	x := make([]string, len(h.Counts))
	y := make([]opts.BarData, len(h.Counts))
	for i, center := range h.binCenters() {
		x[i] = fmt.Sprintf("%.0f", center)
		y[i] = opts.BarData{Value: h.Counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Nanotime histogram",
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "TCSPC nanotime histogram",
			Subtitle: fmt.Sprintf("photons=%d donor=%.1f%% acceptor=%.1f%%",
				h.Total, 100*h.DonorFraction(), 100*h.AcceptorFraction()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).AddSeries("photons", y)
	return bar.Render(w)
}

// WriteReport renders the HTML report to a file.
func (h *AlternationHistogram) WriteReport(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	renderErr := h.RenderReport(f)
	closeErr := f.Close()
	if renderErr != nil {
		return renderErr
	}
	return closeErr
}
