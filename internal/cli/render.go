package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
)

const dateFormat = "2006-01-02 15:04"

// envelope mirrors the HTTP response body so --json output is interchangeable.
type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeEnvelope(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(envelope{Status: "success", Data: data})
}

func writeErrorEnvelope(w io.Writer, err error) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(envelope{Status: "error", Message: err.Error()})
}

func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(header)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("render table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
func f3(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }

func renderGenre(w io.Writer, m domain.GenreMetrics) error {
	rows := [][]string{
		{"Tracks analyzed", strconv.Itoa(m.TracksAnalyzed)},
		{"Playlist presence", strconv.Itoa(m.PlaylistPresence)},
		{"Avg popularity", f2(m.AvgPopularity)},
		{"Avg energy", f3(m.AvgEnergy)},
		{"Avg danceability", f3(m.AvgDanceability)},
		{"Avg valence", f3(m.AvgValence)},
		{"Avg tempo", strconv.FormatFloat(m.AvgTempo, 'f', 1, 64)},
		{"Avg acousticness", f3(m.AvgAcousticness)},
		{"Avg instrumentalness", f3(m.AvgInstrumentalness)},
	}
	if m.PopularityStd != nil {
		rows = append(rows, []string{"Popularity std", f2(*m.PopularityStd)})
	}
	if m.EnergyRange != nil {
		rows = append(rows, []string{"Energy range", f3(m.EnergyRange[0]) + " - " + f3(m.EnergyRange[1])})
	}
	if m.TempoRange != nil {
		rows = append(rows, []string{"Tempo range", f2(m.TempoRange[0]) + " - " + f2(m.TempoRange[1])})
	}
	rows = append(rows, []string{"Estimated", strconv.FormatBool(m.Estimated)})

	fmt.Fprintf(w, "Genre: %s\n", m.Genre)
	if err := renderTable(w, []string{"Metric", "Value"}, rows); err != nil {
		return err
	}
	if m.Note != "" {
		fmt.Fprintln(w, m.Note)
	}

	if len(m.TopTracks) > 0 {
		tracks := make([][]string, 0, len(m.TopTracks))
		for _, t := range m.TopTracks {
			tracks = append(tracks, []string{t.Name, t.Artist, strconv.Itoa(t.Popularity)})
		}
		if err := renderTable(w, []string{"Track", "Artist", "Popularity"}, tracks); err != nil {
			return err
		}
	}
	return nil
}

func renderErrors(w io.Writer, errs []domain.EntityError) error {
	if len(errs) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(errs))
	for _, e := range errs {
		rows = append(rows, []string{e.Entity, e.Error})
	}
	return renderTable(w, []string{"Failed", "Error"}, rows)
}

func renderComparison(w io.Writer, c *domain.ComparisonResult) error {
	if c == nil {
		return nil
	}
	set := domain.GenreMetricSet
	if c.Kind == domain.KindArtist {
		set = domain.ArtistMetricSet
	}

	var rows [][]string
	for _, metric := range set {
		for _, e := range c.Rankings[metric.Key] {
			value := f3(e.Value)
			if metric.Integer {
				value = strconv.FormatFloat(e.Value, 'f', 0, 64)
			}
			rows = append(rows, []string{string(metric.Key), strconv.Itoa(e.Rank), e.Name, value})
		}
	}
	if err := renderTable(w, []string{"Metric", "Rank", "Name", "Value"}, rows); err != nil {
		return err
	}

	if len(c.UndergroundGems) > 0 {
		if err := renderGems(w, c.UndergroundGems); err != nil {
			return err
		}
	}
	for _, insight := range c.Insights {
		fmt.Fprintln(w, insight)
	}
	return nil
}

func renderGems(w io.Writer, gems []domain.UndergroundGem) error {
	rows := make([][]string, 0, len(gems))
	for _, g := range gems {
		rows = append(rows, []string{g.Genre, f3(g.Score), f2(g.Popularity), f3(g.Energy), f3(g.Danceability), g.Reason})
	}
	return renderTable(w, []string{"Genre", "Score", "Popularity", "Energy", "Danceability", "Reason"}, rows)
}

func renderGenreBatch(w io.Writer, b domain.GenreBatch) error {
	rows := make([][]string, 0, len(b.GenresAnalyzed))
	for _, m := range b.Succeeded() {
		rows = append(rows, []string{
			m.Genre,
			strconv.Itoa(m.TracksAnalyzed),
			f2(m.AvgPopularity),
			f3(m.AvgEnergy),
			f3(m.AvgDanceability),
			strconv.FormatBool(m.Estimated),
		})
	}
	if err := renderTable(w, []string{"Genre", "Tracks", "Popularity", "Energy", "Danceability", "Estimated"}, rows); err != nil {
		return err
	}
	if err := renderErrors(w, b.Errors); err != nil {
		return err
	}
	if b.Message != "" {
		fmt.Fprintln(w, b.Message)
	}
	return renderComparison(w, b.Comparison)
}

func renderUnderground(w io.Writer, r domain.UndergroundReport) error {
	if len(r.UndergroundGems) > 0 {
		if err := renderGems(w, r.UndergroundGems); err != nil {
			return err
		}
	}
	if err := renderErrors(w, r.Errors); err != nil {
		return err
	}
	fmt.Fprintln(w, r.Summary)
	return nil
}

func renderTrending(w io.Writer, r domain.TrendingReport) error {
	rows := [][]string{
		groupRow("mainstream", r.Mainstream),
		groupRow("underground", r.Underground),
	}
	if err := renderTable(w, []string{"Group", "Analyzed", "Avg popularity", "Avg energy", "Genres"}, rows); err != nil {
		return err
	}
	if err := renderErrors(w, r.Errors); err != nil {
		return err
	}
	if len(r.Genres) > 0 {
		if err := renderTrendingGenres(w, r.Genres); err != nil {
			return err
		}
	}
	if r.Energy != nil {
		fmt.Fprintf(w, "Energy winner: %s (difference %s)\n", r.Energy.Winner, f3(r.Energy.Difference))
	}
	return nil
}

func groupRow(name string, g domain.GroupSummary) []string {
	return []string{name, strconv.Itoa(g.Analyzed), f2(g.AvgPopularity), f3(g.AvgEnergy), fmt.Sprint(g.Genres)}
}

func renderArtistStub(w io.Writer, a domain.ArtistStub) error {
	rows := [][]string{{a.ID, a.Name, strconv.Itoa(a.Popularity), strconv.Itoa(a.Followers), fmt.Sprint(a.Genres)}}
	return renderTable(w, []string{"ID", "Name", "Popularity", "Followers", "Genres"}, rows)
}

func renderArtist(w io.Writer, p domain.ArtistProfile) error {
	rows := [][]string{
		{"ID", p.ID},
		{"Popularity", strconv.Itoa(p.Popularity)},
		{"Followers", p.FollowersFormatted},
		{"Genres", fmt.Sprint(p.Genres)},
		{"Tracks analyzed", strconv.Itoa(p.TracksAnalyzed)},
		{"Avg track popularity", f2(p.AvgTrackPopularity)},
		{"Top track popularity", strconv.Itoa(p.TopTrackPopularity)},
	}
	if p.TotalAlbums != nil {
		rows = append(rows, []string{"Albums", strconv.Itoa(*p.TotalAlbums)})
	}
	if p.AudioFeatures != nil {
		rows = append(rows,
			[]string{"Avg energy", f3(p.AudioFeatures.Energy)},
			[]string{"Avg danceability", f3(p.AudioFeatures.Danceability)},
			[]string{"Avg tempo", strconv.FormatFloat(p.AudioFeatures.Tempo, 'f', 1, 64)},
		)
	}
	if p.ConsistencyScore != nil {
		rows = append(rows, []string{"Consistency", f3(*p.ConsistencyScore)})
	}

	fmt.Fprintf(w, "Artist: %s\n", p.Name)
	if err := renderTable(w, []string{"Field", "Value"}, rows); err != nil {
		return err
	}
	if p.Note != "" {
		fmt.Fprintln(w, p.Note)
	}
	if len(p.TopTracks) > 0 {
		tracks := make([][]string, 0, len(p.TopTracks))
		for _, t := range p.TopTracks {
			tracks = append(tracks, []string{t.Name, t.Album, strconv.Itoa(t.Popularity)})
		}
		return renderTable(w, []string{"Track", "Album", "Popularity"}, tracks)
	}
	return nil
}

func renderArtistBatch(w io.Writer, b domain.ArtistBatch) error {
	rows := make([][]string, 0, len(b.ArtistsCompared))
	for _, name := range b.ArtistsCompared {
		p, ok := b.DetailedData[name]
		if !ok {
			continue
		}
		consistency := "-"
		if p.ConsistencyScore != nil {
			consistency = f3(*p.ConsistencyScore)
		}
		rows = append(rows, []string{p.Name, strconv.Itoa(p.Popularity), p.FollowersFormatted, f2(p.AvgTrackPopularity), consistency})
	}
	if err := renderTable(w, []string{"Artist", "Popularity", "Followers", "Avg track popularity", "Consistency"}, rows); err != nil {
		return err
	}
	if err := renderErrors(w, b.Errors); err != nil {
		return err
	}
	if b.Message != "" {
		fmt.Fprintln(w, b.Message)
	}
	return renderComparison(w, b.Comparison)
}

func renderVersus(w io.Writer, r domain.VersusReport) error {
	rows := make([][]string, 0, len(r.Contenders))
	for _, c := range r.Contenders {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Popularity), c.FollowersFormatted, c.TopTrack, fmt.Sprint(c.Genres)})
	}
	fmt.Fprintln(w, r.Matchup)
	if err := renderTable(w, []string{"Artist", "Popularity", "Followers", "Top track", "Genres"}, rows); err != nil {
		return err
	}
	for _, insight := range r.Insights {
		fmt.Fprintln(w, insight)
	}
	return nil
}

func renderGenreHistory(w io.Writer, snaps []domain.GenreSnapshot) error {
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, []string{
			s.CapturedAt.Local().Format(dateFormat),
			strconv.Itoa(s.TracksAnalyzed),
			f2(s.AvgPopularity),
			f3(s.AvgEnergy),
			f3(s.AvgDanceability),
			strconv.FormatBool(s.Estimated),
		})
	}
	return renderTable(w, []string{"Captured", "Tracks", "Popularity", "Energy", "Danceability", "Estimated"}, rows)
}

func renderArtistHistory(w io.Writer, artist domain.ArtistIdentity, snaps []domain.ArtistSnapshot) error {
	fmt.Fprintf(w, "Artist: %s (%s), last seen %s\n", artist.Name, artist.ID, artist.UpdatedAt.Local().Format(dateFormat))
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		consistency := "-"
		if s.ConsistencyScore != nil {
			consistency = f3(*s.ConsistencyScore)
		}
		rows = append(rows, []string{
			s.CapturedAt.Local().Format(dateFormat),
			strconv.Itoa(s.Popularity),
			strconv.Itoa(s.Followers),
			f2(s.AvgTrackPopularity),
			consistency,
		})
	}
	return renderTable(w, []string{"Captured", "Popularity", "Followers", "Avg track popularity", "Consistency"}, rows)
}

func renderTrendingGenres(w io.Writer, genres map[string]domain.GenreMetrics) error {
	names := make([]string, 0, len(genres))
	for name := range genres {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		m := genres[name]
		rows = append(rows, []string{name, f2(m.AvgPopularity), f3(m.AvgEnergy), m.AnalyzedAt.Format(time.RFC3339)})
	}
	return renderTable(w, []string{"Genre", "Popularity", "Energy", "Analyzed"}, rows)
}

func renderScenes(w io.Writer, r domain.ScenePairReport) error {
	fmt.Fprintln(w, "Underground")
	if err := renderArtistBatch(w, r.Underground); err != nil {
		return err
	}
	fmt.Fprintln(w, "\nMainstream")
	return renderArtistBatch(w, r.Mainstream)
}

func renderHealth(w io.Writer, h domain.HealthReport) error {
	return renderTable(w, []string{"Status", "Database", "Catalog", "Credentials"}, [][]string{
		{h.Status, h.Database, h.Catalog, strconv.FormatBool(h.CredentialsConfigured)},
	})
}
