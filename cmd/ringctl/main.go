// Command ringctl exercises ring arenas: synthetic workloads, concurrent
// stress runs, benchmarks and scripted replays.
package main

func main() {
	execute()
}
