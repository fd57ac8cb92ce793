/*
Package inline classifies one line of authored body text into reference spans.

Recognized constructs, applied left to right with the first match winning at each position:

	**bold**                 bold span (no nesting)
	[label](#/node/id)       link to a node of the same tree
	[label](#/tree/id)       link to another tree
	[label](#/drug/id/hint)  drug monograph link; hint is display only
	[label](#/info/id)       info page link
	[3][4]                   citation reference with numbers 3 and 4

Everything else is literal text. The scanner never fails: unterminated or malformed
markers are emitted as literal text.
*/
package inline
