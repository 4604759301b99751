package schemagen

import "github.com/exip-go/exip/core"

// placeholderGrammar is the back-edge of particleGrammar's unbounded loop:
// the term is built with the placeholder as its continuation before the
// term's own start rule exists. It is wired into productions as an ordinary core.Grammar
// value; once the real grammar is ready, resolve patches the indirection in
// place so every production already pointing at the placeholder observes
// the final grammar. This is the memory-safe collapse of the C arena's
// allocation-pair patch that spec.md's Design Notes (§9) call for: one
// mutable field behind a stable pointer, no raw pointer surgery.
type placeholderGrammar struct {
	target core.Grammar
}

func newPlaceholder() *placeholderGrammar {
	return &placeholderGrammar{}
}

func (p *placeholderGrammar) resolve(g core.Grammar) {
	p.target = g
}

func (p *placeholderGrammar) resolved() bool {
	return p.target != nil
}

func (p *placeholderGrammar) IsSchemaInformed() bool        { return p.target.IsSchemaInformed() }
func (p *placeholderGrammar) HasEndElement() bool           { return p.target.HasEndElement() }
func (p *placeholderGrammar) GetGrammarType() core.GrammarType {
	return p.target.GetGrammarType()
}
func (p *placeholderGrammar) GetNumberOfEvents() int { return p.target.GetNumberOfEvents() }
func (p *placeholderGrammar) AddProduction(event core.Event, grammar core.Grammar) error {
	return p.target.AddProduction(event, grammar)
}
func (p *placeholderGrammar) LearnStartElement(se *core.StartElement) { p.target.LearnStartElement(se) }
func (p *placeholderGrammar) LearnEndElement()                       { p.target.LearnEndElement() }
func (p *placeholderGrammar) LearnAttribute(at *core.Attribute) error {
	return p.target.LearnAttribute(at)
}
func (p *placeholderGrammar) LearnCharacters()  { p.target.LearnCharacters() }
func (p *placeholderGrammar) StopLearning()     { p.target.StopLearning() }
func (p *placeholderGrammar) LearningStopped() int { return p.target.LearningStopped() }
func (p *placeholderGrammar) GetElementContentGrammar() core.Grammar {
	return p.target.GetElementContentGrammar()
}
func (p *placeholderGrammar) GetProduction(eventType core.EventType) core.Production {
	return p.target.GetProduction(eventType)
}
func (p *placeholderGrammar) GetStartElementProduction(namespaceUri, localName string) core.Production {
	return p.target.GetStartElementProduction(namespaceUri, localName)
}
func (p *placeholderGrammar) GetStartElementNSProduction(namespaceUri string) core.Production {
	return p.target.GetStartElementNSProduction(namespaceUri)
}
func (p *placeholderGrammar) GetAttributeProduction(namespaceUri, localName string) core.Production {
	return p.target.GetAttributeProduction(namespaceUri, localName)
}
func (p *placeholderGrammar) GetAttributeNSProduction(namespaceUri string) core.Production {
	return p.target.GetAttributeNSProduction(namespaceUri)
}
func (p *placeholderGrammar) GetProductionByEventCode(eventCode int) core.Production {
	return p.target.GetProductionByEventCode(eventCode)
}

var _ core.Grammar = (*placeholderGrammar)(nil)
