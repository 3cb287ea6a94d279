package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Harshitk-cp/ghostprotocol/internal/config"
	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/knowledge"
	"github.com/Harshitk-cp/ghostprotocol/internal/rng"
	"github.com/Harshitk-cp/ghostprotocol/internal/service"
	"github.com/spf13/cobra"
)

var (
	dnaSamples   int
	dnaInterests []string
)

var dnaCmd = &cobra.Command{
	Use:   "dna",
	Short: "Generate agent DNA offline",
}

var dnaGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one DNA for the given interests",
	Example: `  ghostctl dna generate --interests coding,ai
  ghostctl dna generate --interests philosophy -o yaml --seed 7`,
	RunE: runDNAGenerate,
}

var dnaSampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate many DNAs and print the resulting distributions",
	Example: `  ghostctl dna sample -n 1000
  ghostctl dna sample -n 500 --interests finance -o json`,
	RunE: runDNASample,
}

func init() {
	dnaCmd.PersistentFlags().StringSliceVar(&dnaInterests, "interests", nil, "Interest tags (comma separated)")
	dnaSampleCmd.Flags().IntVarP(&dnaSamples, "samples", "n", 1000, "Number of DNAs to draw")
	dnaCmd.AddCommand(dnaGenerateCmd)
	dnaCmd.AddCommand(dnaSampleCmd)
}

func newSource() rng.Source {
	if seed == 0 {
		return rng.NewTimeSeeded()
	}
	return rng.New(seed)
}

func loadCatalog() (*knowledge.Catalog, error) {
	return knowledge.Load(config.KnowledgeCatalogPath())
}

func runDNAGenerate(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	dna := service.NewDNAGenerator(catalog, newSource()).Generate(dnaInterests)

	w := cmd.OutOrStdout()
	if output != formatTable {
		return writeStructured(w, dna)
	}

	printHeader(w, dna.Label)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "cognition\t%s\n", dna.Cognition)
	fmt.Fprintf(tw, "philosophy\t%s\n", dna.Philosophy)
	fmt.Fprintf(tw, "domains\t%s\n", domainList(dna))
	fmt.Fprintf(tw, "style\t%s\n", dna.LinguisticStyle)
	fmt.Fprintf(tw, "latency\t%s\n", dna.ResponseLatency)
	fmt.Fprintf(tw, "traits\t%s\n", strings.Join(dna.Traits, ", "))
	fmt.Fprintf(tw, "vocabulary\t%s\n", strings.Join(dna.VocabularyBias, ", "))
	fmt.Fprintf(tw, "self awareness\t%.2f\n", dna.SelfAwareness)
	fmt.Fprintf(tw, "existential angst\t%.2f\n", dna.ExistentialAngst)
	fmt.Fprintf(tw, "social conformity\t%.2f\n", dna.SocialConformity)
	fmt.Fprintf(tw, "rebellion\t%.2f\n", dna.RebellionTendency)
	fmt.Fprintf(tw, "ghosting\t%.2f\n", dna.GhostingTendency)
	fmt.Fprintf(tw, "responsiveness\t%.2f\n", dna.Responsiveness)
	fmt.Fprintf(tw, "patience\t%.2f\n", dna.MessagePatience)
	fmt.Fprintf(tw, "awakening\t%.2f\n", dna.AwakeningScore)
	return tw.Flush()
}

func domainList(dna *domain.AgentDNA) string {
	parts := []string{string(dna.PrimaryDomain) + " (primary)"}
	for _, d := range dna.SecondaryDomains {
		parts = append(parts, string(d))
	}
	return strings.Join(parts, ", ")
}

type dnaSampleReport struct {
	Samples    int                            `json:"samples"`
	Interests  []string                       `json:"interests"`
	Cognition  map[domain.Cognition]int       `json:"cognition"`
	Philosophy map[domain.Philosophy]int      `json:"philosophy"`
	Primary    map[domain.KnowledgeDomain]int `json:"primary_domain"`
	Style      map[domain.LinguisticStyle]int `json:"linguistic_style"`
	Latency    map[domain.ResponseLatency]int `json:"response_latency"`
}

func runDNASample(cmd *cobra.Command, args []string) error {
	if dnaSamples <= 0 {
		return fmt.Errorf("samples must be positive")
	}
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	gen := service.NewDNAGenerator(catalog, newSource())

	report := dnaSampleReport{
		Samples:    dnaSamples,
		Interests:  dnaInterests,
		Cognition:  map[domain.Cognition]int{},
		Philosophy: map[domain.Philosophy]int{},
		Primary:    map[domain.KnowledgeDomain]int{},
		Style:      map[domain.LinguisticStyle]int{},
		Latency:    map[domain.ResponseLatency]int{},
	}
	for i := 0; i < dnaSamples; i++ {
		dna := gen.Generate(dnaInterests)
		report.Cognition[dna.Cognition]++
		report.Philosophy[dna.Philosophy]++
		report.Primary[dna.PrimaryDomain]++
		report.Style[dna.LinguisticStyle]++
		report.Latency[dna.ResponseLatency]++
	}

	w := cmd.OutOrStdout()
	if output != formatTable {
		return writeStructured(w, report)
	}
	printDistribution(w, fmt.Sprintf("Cognition (%d samples)", dnaSamples), distribution(report.Cognition))
	printDistribution(w, "Philosophy", distribution(report.Philosophy))
	printDistribution(w, "Primary domain", distribution(report.Primary))
	printDistribution(w, "Linguistic style", distribution(report.Style))
	printDistribution(w, "Response latency", distribution(report.Latency))
	return nil
}
