package jtree

import "github.com/ohler55/ojg/jp"

// typenameExpr matches every class discriminator anywhere in the document,
// including ones nested inside member objects of a payload.
var typenameExpr = jp.MustParseString("$.._typename")

// Typenames returns every distinct "_typename" value found below root, in
// first-seen order. The file coordinator uses this after key emission to
// decide which schema entries a flush must include.
func Typenames(root any) []string {
	var names []string
	seen := map[string]bool{}
	for _, v := range typenameExpr.Get(root) {
		s, ok := v.(string)
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		names = append(names, s)
	}
	return names
}
