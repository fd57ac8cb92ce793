/*
Package consult is the decision node graph engine behind a clinical-reference browser.

Clinical pathways are authored as trees of decision nodes: info pages that advance
to a single next node, questions with explicit options, input forms and terminal
results. The engine walks a session through a tree and projects the current node
into a display structure whose inline references (drug links, citations, info
pages, jumps to other nodes or trees) are resolved against the content store and
exposed as typed intents. The host decides what an intent does.

# Concept

The engine holds no session state. Every operation takes a session value and
returns a new one, so the same session can be persisted, diffed or replayed.
Branching is always explicit and operator selected; nothing evaluates clinical
logic on the operator's behalf.

# Usage

	eng, err := consult.New() // bundled library
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
		fmt.Println(view.Title)
		if view.Terminal {
			break
		}

		// Answer questions with SelectOption, forms with SubmitInput,
		// and follow info nodes with Advance.
		if len(view.Options) > 0 {
			s, err = eng.SelectOption(ctx, s, 0)
		} else {
			s, err = eng.Advance(ctx, s)
		}
		if err != nil {
			log.Fatal(err)
		}
	}

Sessions that outlive a process are handled by the manager returned from
Engine.Sessions, which serializes operations per session id on top of any
ports.SessionStore (memory, JSON files, SQLite or Redis).
*/
package consult
