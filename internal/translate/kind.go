package translate

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Kind is the closed set of top-level node kinds the block translator
// recognises. Everything else is KindOther.
type Kind uint8

const (
	KindOther Kind = iota
	KindText
	KindHeading1
	KindHeading2
	KindHeading3
	KindParagraph
	KindUnorderedList
	KindOrderedList
	KindBlockquote
	KindCodeBlock
	KindRule
	KindTable
	KindImage
)

var kindNames = [...]string{
	KindOther:         "other",
	KindText:          "text",
	KindHeading1:      "h1",
	KindHeading2:      "h2",
	KindHeading3:      "h3",
	KindParagraph:     "p",
	KindUnorderedList: "ul",
	KindOrderedList:   "ol",
	KindBlockquote:    "blockquote",
	KindCodeBlock:     "pre",
	KindRule:          "hr",
	KindTable:         "table",
	KindImage:         "img",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "other"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText maps unknown names to KindOther.
func (k *Kind) UnmarshalText(b []byte) error {
	*k = KindOther
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			break
		}
	}
	return nil
}

var elementKinds = map[atom.Atom]Kind{
	atom.H1:         KindHeading1,
	atom.H2:         KindHeading2,
	atom.H3:         KindHeading3,
	atom.P:          KindParagraph,
	atom.Ul:         KindUnorderedList,
	atom.Ol:         KindOrderedList,
	atom.Blockquote: KindBlockquote,
	atom.Pre:        KindCodeBlock,
	atom.Hr:         KindRule,
	atom.Table:      KindTable,
	atom.Img:        KindImage,
}

// KindOf classifies a top-level body node.
func KindOf(n *html.Node) Kind {
	switch n.Type {
	case html.TextNode:
		return KindText
	case html.ElementNode:
		if k, ok := elementKinds[n.DataAtom]; ok {
			return k
		}
	}
	return KindOther
}
