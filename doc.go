/*
Command cellforth is a small Forth-style system built on an indirect
threaded code VM.

Everything the machine knows lives in one flat arena of 32-bit cells:

	@0         always 0; "no next entry", "not found", "top-level return"
	@1..@14    registers: here, latest, sp, rp, state, the entries of
	           exit and lit, stack bases and sizes, the dictionary base,
	           and the entries of branch and 0branch
	@16        data stack
	@16+D      return stack
	@16+D+R    dictionary, growing up toward capacity

Since the registers are plain cells, Forth code can inspect and change them
with @ and !; for example "1 @" is the same as "here".

A dictionary entry is a header followed by a code field:

	next hidden immediate primitive len name... code

The code field holds the address of the body. A primitive body is a single
cell holding an index into the table of Go functions; a compound body is a
sequence of entry addresses ending with the entry of exit. References to lit,
branch and 0branch are followed by one operand cell.

The inner interpreter keeps its resume addresses on the return stack: each
step pushes ip+1 before dispatching, and each primitive returns by popping
it. So lit, branch and 0branch find their operand by peeking at the return
stack, and >r r> r@ work just beneath their own resume address.

The outer interpreter reads whitespace separated tokens. A token that parses
as a literal is pushed, or compiled as "lit n" inside a definition; any other
token must name a word. Words are executed, or compiled by reference inside a
definition unless they are immediate. An unknown word is reported as

	foo ?

and the rest of its line is skipped; any other fault ends the session.

Beyond the bootstrap set (exit lit dup drop + - ! @) the builtin words are:

	swap over rot * / mod <0 = 1+ nop
	>r r> r@ depth rdepth
	emit . cr here , allot words bye branch 0branch
	: ; immediate recurse ( \
	if else then begin until again

Sessions may be started from, and saved to, CBOR images of the arena; see
the -image and -save flags, or the [image] section of a -config file.
*/
package main
