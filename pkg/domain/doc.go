/*
Package domain contains the core domain models of the consult engine.

It defines the clinical decision graph (trees and their nodes), the reference content
(drug monographs and info pages), the traversal session, and the typed values the
engine hands to hosts: parsed reference spans, rendered nodes and navigation intents.
This package is kept pure and free of I/O or persistence concerns.

# Key Entities

  - Tree: a self-contained graph of DecisionNodes with one entry point and one citation table.
  - DecisionNode: a step of a clinical algorithm (question, info, input or result).
  - TreeSession: the traversal state of one walk through one tree.
  - Span: one classified piece of authored body text (text, bold, link or citation).
  - Intent: a typed navigation/display request emitted for the host to fulfil.
*/
package domain
