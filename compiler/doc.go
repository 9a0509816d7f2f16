/*

Process of compilation

Program Text ->
	parse ->
Abstract Syntax Tree (ast) ->
	generate ->
Pseudo Assembly over variables (asm) ->
	cfg, liveness, interference ->
Interference Graph ->
	color, spill ->
Pseudo Assembly over registers (asm) ->
	emit ->
MIPS Assembly Text

*/
package compiler
