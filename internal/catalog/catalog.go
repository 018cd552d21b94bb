// Package catalog holds the seed data for the guided program: the 15 predefined
// memory categories and the 150 questions split into 4 boxes. The question texts
// live in an embedded YAML file so the catalog can be reviewed without touching code.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"tecelaria/internal/model"
)

//go:embed questions.yaml
var questionsYAML []byte

// PredefinedCategory is a seed row for the category table.
type PredefinedCategory struct {
	Name        string
	Description string
	SortOrder   int
}

// PredefinedCategories are seeded once, in this order. The last entry is the
// fallback used when a question carries no category mapping.
var PredefinedCategories = []PredefinedCategory{
	{Name: "Infância", Description: "Primeiros anos, brincadeiras e descobertas", SortOrder: 1},
	{Name: "Família", Description: "Pais, avós, irmãos e a vida em família", SortOrder: 2},
	{Name: "Amizades", Description: "Amigos de todas as fases da vida", SortOrder: 3},
	{Name: "Amor e Relacionamentos", Description: "Paixões, namoros e parcerias", SortOrder: 4},
	{Name: "Carreira e Trabalho", Description: "Ofícios, profissões e conquistas profissionais", SortOrder: 5},
	{Name: "Viagens", Description: "Lugares visitados e estradas percorridas", SortOrder: 6},
	{Name: "Conquistas", Description: "Vitórias grandes e pequenas", SortOrder: 7},
	{Name: "Desafios e Superações", Description: "Momentos difíceis e como foram vencidos", SortOrder: 8},
	{Name: "Tradições e Celebrações", Description: "Festas, rituais e costumes de família", SortOrder: 9},
	{Name: "Casa e Lugares", Description: "Casas, bairros e cidades que marcaram", SortOrder: 10},
	{Name: "Estudos e Aprendizados", Description: "Escola, mestres e lições da vida", SortOrder: 11},
	{Name: "Fé e Espiritualidade", Description: "Crenças, dúvidas e experiências do espírito", SortOrder: 12},
	{Name: "Lazer e Hobbies", Description: "Passatempos, esportes e diversões", SortOrder: 13},
	{Name: "Sabores e Receitas", Description: "Comidas, cheiros e receitas de memória", SortOrder: 14},
	{Name: model.DefaultCategoryName, Description: "Lembranças que não cabem em gaveta nenhuma", SortOrder: 15},
}

// SeedQuestion is one catalog entry. Category is a predefined category name or
// empty when the question has no mapping (the creation flow falls back to the
// default category in that case).
type SeedQuestion struct {
	Number   int    `yaml:"number"`
	Text     string `yaml:"text"`
	Category string `yaml:"category,omitempty"`
}

type seedBox struct {
	Box       int            `yaml:"box"`
	Questions []SeedQuestion `yaml:"questions"`
}

type seedFile struct {
	Boxes []seedBox `yaml:"boxes"`
}

// Questions parses the embedded catalog and validates its shape: 4 boxes sized
// 15/45/45/45, sequential numbers within each box, known category names.
func Questions() (map[int][]SeedQuestion, error) {
	var file seedFile
	if err := yaml.Unmarshal(questionsYAML, &file); err != nil {
		return nil, fmt.Errorf("parse question catalog: %w", err)
	}

	known := make(map[string]bool, len(PredefinedCategories))
	for _, cat := range PredefinedCategories {
		known[cat.Name] = true
	}

	if len(file.Boxes) != model.BoxCount {
		return nil, fmt.Errorf("question catalog has %d boxes, want %d", len(file.Boxes), model.BoxCount)
	}

	byBox := make(map[int][]SeedQuestion, model.BoxCount)
	for _, box := range file.Boxes {
		if box.Box < 1 || box.Box > model.BoxCount {
			return nil, fmt.Errorf("unknown box %d", box.Box)
		}
		if _, dup := byBox[box.Box]; dup {
			return nil, fmt.Errorf("box %d listed twice", box.Box)
		}
		want := model.BoxSizes[box.Box-1]
		if len(box.Questions) != want {
			return nil, fmt.Errorf("box %d has %d questions, want %d", box.Box, len(box.Questions), want)
		}
		for i, q := range box.Questions {
			if q.Number != i+1 {
				return nil, fmt.Errorf("box %d question %d out of order (number %d)", box.Box, i+1, q.Number)
			}
			if q.Text == "" {
				return nil, fmt.Errorf("box %d question %d has empty text", box.Box, q.Number)
			}
			if q.Category != "" && !known[q.Category] {
				return nil, fmt.Errorf("box %d question %d references unknown category %q", box.Box, q.Number, q.Category)
			}
		}
		byBox[box.Box] = box.Questions
	}

	return byBox, nil
}
