package depanalyzer

// RegisterDefaultLanguages binds the analyzer's built-in parsers: the
// three languages the corpus demonstrates tree-sitter grammars for
// (Go, JavaScript/TypeScript, Python), and a lighter regex-based parser
// for the remaining mainstream compiled languages (Java, C, C++) rather
// than inventing ungrounded grammar bindings for them.
func RegisterDefaultLanguages(a *Analyzer) {
	a.RegisterParser(newGoParser(), ".go")
	a.RegisterParser(newJSTSParser(), ".js", ".jsx", ".ts", ".tsx")
	a.RegisterParser(newPythonParser(), ".py")
	a.RegisterParser(newRegexParser(javaRules), ".java")
	a.RegisterParser(newRegexParser(cRules), ".c", ".h")
	a.RegisterParser(newRegexParser(cppRules), ".cc", ".cpp", ".cxx", ".hpp", ".hh")
}
