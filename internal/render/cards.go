package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"cropsense/internal/insight"
	"cropsense/internal/models"
)

// Printer writes result cards to a writer
type Printer struct {
	w io.Writer
	s Styles
}

func NewPrinter(w io.Writer, theme Theme) *Printer {
	return &Printer{w: w, s: NewStyles(w, theme)}
}

func (p *Printer) card(title string, lines ...string) {
	body := p.s.Title.Render(title)
	if len(lines) > 0 {
		body += "\n" + strings.Join(lines, "\n")
	}
	fmt.Fprintln(p.w, p.s.Card.Render(body))
}

func (p *Printer) field(label, value string) string {
	return p.s.Label.Render(label+": ") + p.s.Value.Render(value)
}

// Notice prints a one-line informational message
func (p *Printer) Notice(msg string) {
	fmt.Fprintln(p.w, p.s.Success.Render("✓ ")+msg)
}

// Error prints a one-line failure message
func (p *Printer) Error(msg string) {
	fmt.Fprintln(p.w, p.s.Error.Render("✗ ")+msg)
}

func (p *Printer) Weather(w models.Weather, fallback bool) {
	lines := []string{
		p.field("Temperature", Celsius(w.Temperature)),
		p.field("Humidity", fmt.Sprintf("%g%%", w.Humidity)),
		p.field("Rainfall", w.RainfallForecast),
	}
	if w.Description != "" {
		lines = append(lines, p.s.Muted.Render(w.Description))
	}
	if fallback {
		lines = append(lines, p.s.Warning.Render("Live weather unavailable, showing typical values"))
	}
	p.card("Weather Forecast", lines...)
}

// Forecast prints the price forecast headline and a summary of the series
func (p *Printer) Forecast(pred models.PricePrediction) {
	sum := insight.SummarizePrices(pred.PredictedPrices)
	lines := []string{
		p.s.Value.Render(Rupees(pred.Latest())) + "  " +
			p.s.Badge.Render(TrendBadge(pred.Trend)) + "  " +
			p.s.Label.Render(Confidence(pred.ConfidenceScore)),
		p.field("Change", fmt.Sprintf("%+.1f%% over %d days", sum.ChangePercent, sum.Days)),
		p.field("Range", Rupees(sum.Min)+" to "+Rupees(sum.Max)),
	}

	prices := make([]string, len(pred.PredictedPrices))
	for i, v := range pred.PredictedPrices {
		prices[i] = FormatIndian(v)
	}
	lines = append(lines, p.s.Muted.Render(strings.Join(prices, " → ")))

	if sum.Volatile() {
		lines = append(lines, p.s.Warning.Render("Prices are volatile this week"))
	}
	for _, o := range sum.Outliers {
		lines = append(lines, p.s.Warning.Render(fmt.Sprintf("Day %d stands out at %s", o.Day, Rupees(o.Price))))
	}
	p.card("Price Forecast", lines...)
}

func (p *Printer) Recommendation(rec models.MarketRecommendation) {
	lines := []string{
		p.field("Recommended Mandi", rec.BestMandi),
		p.field("Expected Price", Rupees(rec.PredictedPrice)),
		p.field("Est. Profit", Rupees(rec.ExpectedProfit)),
	}
	if rec.Confidence > 0 {
		lines = append(lines, p.s.Label.Render(Confidence(rec.Confidence)))
	}
	if rec.Explanation != "" {
		lines = append(lines, p.s.Label.Render("Why? ")+rec.Explanation)
	}
	p.card("Best Market to Sell", lines...)
}

func (p *Printer) Spoilage(risk models.SpoilageRisk) {
	bucket := SpoilageBucket(risk.SpoilageProbability)
	lines := []string{
		p.s.Level(bucket).Render(fmt.Sprintf("%s (%s)", bucket, Percent(risk.SpoilageProbability))),
	}
	if risk.Suggestion != "" {
		lines = append(lines, risk.Suggestion)
	}
	p.card("Spoilage Risk", lines...)
}

func (p *Printer) Disease(d models.DiseaseDetection) {
	lines := []string{
		p.s.Value.Render(d.DiseaseName) + "  " + p.s.Level(d.Severity).Render(d.Severity),
		p.field("Confidence", fmt.Sprintf("%.0f%%", d.Confidence)),
	}
	if d.Pesticide != "" {
		lines = append(lines, p.field("Pesticide", d.Pesticide))
	}
	lines = append(lines, p.list("Treatment", d.Treatment)...)
	lines = append(lines, p.list("Prevention", d.Prevention)...)
	p.card("Disease Analysis", lines...)
}

func (p *Printer) list(title string, items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := []string{p.s.Label.Render(title + ":")}
	for _, item := range items {
		out = append(out, "  • "+item)
	}
	return out
}

func (p *Printer) DetectionHistory(h models.DetectionHistory) {
	t := NewTable("Recent Scans", "Date", "Disease", "Severity", "Confidence")
	for _, item := range h {
		t.AddRow(date(item.Timestamp.Time), item.DiseaseName, item.Severity, fmt.Sprintf("%.0f%%", item.Confidence))
	}
	fmt.Fprint(p.w, t.View(p.s))
}

func (p *Printer) Yield(y models.YieldPrediction) {
	lines := []string{
		p.field("Crop", fmt.Sprintf("%s on %g %s", y.CropName, y.LandSize, y.Unit)),
		p.field("Predicted Yield", fmt.Sprintf("%.2f tons", y.PredictedYield)),
		p.field("Per Acre", fmt.Sprintf("%.2f tons", y.YieldPerAcre)),
		p.field("Expected Revenue", Rupees(y.ExpectedRevenue)),
		p.field("Estimated Cost", Rupees(y.EstimatedCost)),
		p.field("Expected Profit", Rupees(y.ExpectedProfit)),
		p.s.Label.Render("Risk: ") + p.s.Level(y.RiskLevel).Render(y.RiskLevel),
	}
	if y.WeatherSummary != "" {
		lines = append(lines, p.s.Muted.Render(y.WeatherSummary))
	}
	lines = append(lines, p.list("Recommendations", y.Recommendations)...)
	p.card("Yield Prediction", lines...)
}

func (p *Printer) YieldHistory(h models.YieldHistory) {
	t := NewTable("Previous Predictions", "Date", "Crop", "Land", "Yield", "Profit", "Risk")
	for _, item := range h {
		t.AddRow(
			date(item.Timestamp.Time),
			item.CropName,
			fmt.Sprintf("%g %s", item.LandSize, item.Unit),
			fmt.Sprintf("%.2f t", item.PredictedYield),
			Rupees(item.ExpectedProfit),
			item.RiskLevel,
		)
	}
	fmt.Fprint(p.w, t.View(p.s))
}

func (p *Printer) User(u models.User) {
	lines := []string{
		p.field("Name", u.Name),
		p.field("Email", u.Email),
	}
	if !u.CreatedAt.IsZero() {
		lines = append(lines, p.field("Member since", u.CreatedAt.Format("January 2006")))
	}
	p.card("Profile", lines...)
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02 Jan 2006")
}
