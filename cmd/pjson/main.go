// Command pjson is a small demo front end for the pjson library, mirroring
// original_source/sample/{tokenize,parse}.c: it reads JSON from stdin and
// either dumps the raw token stream or reports aggregate shape statistics.
package main

func main() {
	Execute()
}
