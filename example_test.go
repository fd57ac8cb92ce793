package consult_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/consult"
	"github.com/aretw0/consult/pkg/dsl"
)

// ExampleNew walks the bundled croup pathway down its mildest branch.
func ExampleNew() {
	eng, err := consult.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	s, err := eng.Start(ctx, "croup")
	if err != nil {
		log.Fatal(err)
	}

	for {
		view, err := eng.Render(ctx, s)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%d/%d %s\n", view.Progress.Module, view.Progress.TotalModules, view.Title)
		if view.Terminal {
			break
		}

		if len(view.Options) > 0 {
			s, err = eng.SelectOption(ctx, s, 0)
		} else {
			s, err = eng.Advance(ctx, s)
		}
		if err != nil {
			log.Fatal(err)
		}
	}

	for _, a := range eng.AnswerHistory(s) {
		fmt.Printf("%s: %s\n", a.NodeTitle, a.Answer)
	}
	// Output:
	// 1/4 Recognizing croup
	// 1/4 Severity
	// 2/4 Mild croup
	// 3/4 Observation
	// 4/4 Discharge home
	// Severity: Mild
	// Observation: Improved, no stridor at rest
}

// ExampleWithContent serves a tree built in Go instead of YAML files.
func ExampleWithContent() {
	b := dsl.Tree("syncope", "Syncope").Modules("Assess", "Dispose")
	b.Add("risk").
		Question("Risk category?").
		Option("Low", "discharge").
		Option("High", "admit")
	b.Add("discharge").Result("Discharge").Module(2)
	b.Add("admit").Result("Admit").Module(2)

	store, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	eng, err := consult.New(consult.WithContent(store))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	s, _ := eng.Start(ctx, "syncope")
	s, err = eng.SelectOption(ctx, s, 1)
	if err != nil {
		log.Fatal(err)
	}
	s, _ = eng.GoBack(ctx, s)

	fmt.Println(s.CurrentNodeID, s.Answers["risk"])
	// Output:
	// risk High
}
