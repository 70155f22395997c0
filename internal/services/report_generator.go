package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookscope/bookscope/internal/models"
	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

// completer produces section bodies for a report. *BookSearchService
// satisfies it; tests pass nil to exercise the fallback text.
type completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type reportSection struct {
	Title string
	Focus string
}

var basicSections = []reportSection{
	{"Book Statistics", "Comprehensive numerical and factual data about the publication"},
	{"Synopsis", "Detailed plot summary and narrative overview"},
	{"Author Presentation", "Biographical information and literary career of the author"},
	{"Copyright and Publication Details", "Legal, publishing, and distribution information"},
	{"Past Adaptations", "Film, television, theater, and other media adaptations"},
}

var detailedSections = append(basicSections[:len(basicSections):len(basicSections)],
	reportSection{"Thematic and Symbolic Analysis", "Exploration of major themes, motifs, and symbolic elements"},
	reportSection{"Character and Setting Study", "In-depth analysis of characters, locations, and their significance"},
	reportSection{"Writing Style and Narrative Techniques", "Examination of prose style, narrative voice, and literary devices"},
	reportSection{"Impact and Legacy", "Cultural influence and lasting significance in literature"},
	reportSection{"Historical and Cultural Context", "Period context and sociocultural background of the work"},
)

var premiumSections = append(detailedSections[:len(detailedSections):len(detailedSections)],
	reportSection{"Critical Reception and Reviews", "Analysis of critical responses and scholarly interpretations"},
	reportSection{"Comparative Literature Study", "Connections to other works and literary traditions"},
	reportSection{"Psychological and Philosophical Interpretations", "Deeper meanings through psychological and philosophical lenses"},
	reportSection{"Symbolism and Allegorical Layers", "Hidden meanings and symbolic representations"},
	reportSection{"Reader Demographics and Audience Response", "Target audience analysis and reception patterns"},
	reportSection{"Marketing and Publication Strategy", "Commercial approach and market positioning"},
	reportSection{"Scholarly and Academic Analysis", "Academic discourse and research perspectives"},
	reportSection{"Influence on Other Media and Authors", "Impact on subsequent creative works and writers"},
	reportSection{"Future Prospects", "Potential sequels, reissues, and ongoing cultural relevance"},
)

// planSections returns the section list and display name for a plan.
func planSections(plan models.PlanType) ([]reportSection, string, error) {
	switch plan {
	case models.PlanBasic:
		return basicSections, "Basic Literary Analysis", nil
	case models.PlanDetailed:
		return detailedSections, "Detailed Literary Analysis", nil
	case models.PlanPremium:
		return premiumSections, "Premium Literary Analysis", nil
	default:
		return nil, "", fmt.Errorf("invalid plan type: %s", plan)
	}
}

// ReportGenerator renders the plan-tiered literary analysis PDF.
type ReportGenerator struct {
	llm    completer
	outDir string
}

// NewReportGenerator builds a generator writing into outDir (the OS temp
// dir when empty). llm may be nil; sections then carry placeholder text.
func NewReportGenerator(llm completer, outDir string) *ReportGenerator {
	if outDir == "" {
		outDir = os.TempDir()
	}
	return &ReportGenerator{llm: llm, outDir: outDir}
}

// Generate writes the report PDF and returns its path. The caller owns
// the file and removes it after dispatch.
func (g *ReportGenerator) Generate(ctx context.Context, bookTitle, bookAuthor string, plan models.PlanType) (string, error) {
	sections, planName, err := planSections(plan)
	if err != nil {
		return "", err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s - %s", bookTitle, planName), true)

	// Cover page
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 28)
	pdf.Ln(60)
	pdf.MultiCell(0, 12, bookTitle, "", "C", false)
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 18)
	pdf.MultiCell(0, 9, "by "+bookAuthor, "", "C", false)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 14)
	pdf.MultiCell(0, 8, planName, "", "C", false)

	for _, section := range sections {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 10, section.Title, "", "L", false)
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 11)
		body := g.sectionBody(ctx, bookTitle, bookAuthor, section)
		pdf.MultiCell(0, 6, body, "", "J", false)
	}

	path := filepath.Join(g.outDir, fmt.Sprintf("report-%s.pdf", uuid.NewString()))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("writing report pdf: %w", err)
	}
	return path, nil
}

func (g *ReportGenerator) sectionBody(ctx context.Context, bookTitle, bookAuthor string, section reportSection) string {
	if g.llm == nil {
		return fallbackBody(bookTitle, bookAuthor, section)
	}
	prompt := fmt.Sprintf(`Write the "%s" section of a literary analysis report about "%s" by %s.

Section focus: %s.

Write 3-5 well-structured paragraphs of plain prose. Do not use markdown, headings or bullet points.`,
		section.Title, bookTitle, bookAuthor, section.Focus)
	body, err := g.llm.Complete(ctx, "You are a literary scholar writing polished analysis prose.", prompt)
	if err != nil || strings.TrimSpace(body) == "" {
		return fallbackBody(bookTitle, bookAuthor, section)
	}
	return body
}

func fallbackBody(bookTitle, bookAuthor string, section reportSection) string {
	return fmt.Sprintf("%s for \"%s\" by %s. Detailed content for this section was unavailable at generation time; please contact support for a regenerated report.",
		section.Focus, bookTitle, bookAuthor)
}
