/*
Package dsl provides a Go DSL for programmatically constructing decision trees.

It defines clinical algorithms with a fluent builder instead of YAML documents. This
is useful for generated content, unit tests and IDE autocompletion.

Example usage:

	b := dsl.Tree("syncope", "Syncope").
		Modules("Assess", "Dispose").
		Cite(1, "Canadian Syncope Risk Score. CMAJ 2016.")

	b.Add("start").
		Info("Initial assessment").
		Body("Obtain an ECG [1].").
		Next("risk")

	b.Add("risk").
		Question("Risk category?").
		Option("Low", "discharge").
		OptionUrgency("High", "admit", domain.UrgencyCritical)

	b.Add("discharge").Result("Discharge").Recommend("Outpatient follow-up.", domain.ConfidenceRecommended)
	b.Add("admit").Result("Admit").Module(2)

	store, err := b.Build() // a ports.ContentStore
*/
package dsl
