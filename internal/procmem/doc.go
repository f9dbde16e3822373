// Package procmem patches strings inside the heap of a running process
// through the /proc filesystem. Linux only.
package procmem
