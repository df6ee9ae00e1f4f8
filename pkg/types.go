package pkg

// Shared types for the keyword pipeline. JSON field names stay German:
// they are the wire format between the LLM stages, the trends tool and
// the HTTP API.

// KeywordRequest is the input of a pipeline run.
type KeywordRequest struct {
	Thema       string `json:"thema"`
	Artikeltext string `json:"artikeltext"`
	AlterMin    int    `json:"alter_min"`
	AlterMax    int    `json:"alter_max"`
}

// ValidierteEingabe is the output of the input validation stage.
type ValidierteEingabe struct {
	Thema         string   `json:"thema"`
	Artikeltext   string   `json:"artikeltext"`
	AlterMin      int      `json:"alter_min"`
	AlterMax      int      `json:"alter_max"`
	Gueltig       bool     `json:"gueltig"`
	Fehlermeldung string   `json:"fehlermeldung"`
	Warnungen     []string `json:"warnungen"`
}

// KeywordKandidat is one generated candidate keyword.
type KeywordKandidat struct {
	Keyword       string `json:"keyword"`
	Suchintention string `json:"suchintention"` // informativ|kommerziell|transaktional|navigational
	Begruendung   string `json:"begruendung"`
}

// KandidatenListe is the output of the candidate generation stage.
type KandidatenListe struct {
	KeywordKandidaten []KeywordKandidat `json:"keyword_kandidaten"`
}

// KeywordTrend is one per-keyword record produced by the trends tool.
// TrendIndex is a 0-100 proxy, not a real search volume; Suchvolumen
// therefore stays null.
type KeywordTrend struct {
	Keyword               string   `json:"keyword"`
	TrendIndex            *int     `json:"trend_index"`
	Suchvolumen           *int     `json:"suchvolumen"`
	VerwandteSuchanfragen []string `json:"verwandte_suchanfragen"`
}

// TrendDaten is the fixed-shape result of the trends tool.
type TrendDaten struct {
	TrendsVerfuegbar bool           `json:"trends_verfuegbar"`
	Ergebnisse       []KeywordTrend `json:"ergebnisse"`
	Hinweis          string         `json:"hinweis"`
}

// AngereichertesKeyword is a candidate merged with its trend record.
type AngereichertesKeyword struct {
	Keyword               string   `json:"keyword"`
	Suchintention         string   `json:"suchintention"`
	Begruendung           string   `json:"begruendung"`
	TrendIndex            *int     `json:"trend_index"`
	Suchvolumen           *int     `json:"suchvolumen"`
	VerwandteSuchanfragen []string `json:"verwandte_suchanfragen"`
}

// AngereicherteKeywords is the output of the enrichment stage.
type AngereicherteKeywords struct {
	AngereicherteKeywords []AngereichertesKeyword `json:"angereicherte_keywords"`
	TrendsVerfuegbar      bool                    `json:"trends_verfuegbar"`
}

// TopKeyword is one scored entry of the final selection.
type TopKeyword struct {
	Keyword            string `json:"keyword"`
	GesamtScore        int    `json:"gesamt_score"`
	TrendIndex         *int   `json:"trend_index"`
	Suchvolumen        *int   `json:"suchvolumen"`
	Suchintention      string `json:"suchintention"`
	AuswahlBegruendung string `json:"auswahl_begruendung"`
}

// SEOErgebnis is the output of the scoring/copywriting stage.
type SEOErgebnis struct {
	TopKeywords      []TopKeyword `json:"top_keywords"`
	SEOTitel         string       `json:"seo_titel"`
	MetaBeschreibung string       `json:"meta_beschreibung"`
	HookUeberschrift string       `json:"hook_ueberschrift"`
	Vorspann         string       `json:"vorspann"`
	TrendsVerfuegbar bool         `json:"trends_verfuegbar"`
}

// KeywordResult is the collected outcome of one pipeline run as served
// over the HTTP API and persisted in the run store.
type KeywordResult struct {
	RunID            string       `json:"run_id"`
	Status           string       `json:"status"`
	TopKeywords      []TopKeyword `json:"top_keywords"`
	SEOTitel         string       `json:"seo_titel"`
	MetaBeschreibung string       `json:"meta_beschreibung"`
	HookUeberschrift string       `json:"hook_ueberschrift"`
	Vorspann         string       `json:"vorspann"`
	DiagrammSpec     string       `json:"diagramm_spec"`
	Zusammenfassung  string       `json:"zusammenfassung"`
	TrendsVerfuegbar bool         `json:"trends_verfuegbar"`
	Warnungen        []string     `json:"warnungen,omitempty"`
}

// IntPtr is a small helper for optional numeric fields.
func IntPtr(v int) *int { return &v }
