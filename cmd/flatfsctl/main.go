// Command flatfsctl is an interactive shell over a single flatfs disk,
// adapted from golangsfs's simdisk_procedure/shell/command trio but
// collapsed to the single-root, single-user, single-process namespace
// this engine actually implements: no cd, no permissions, no background
// channel-driven concurrency simulation.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"flatfs/fs"
)

func main() {
	fmt.Println("flatfsctl -- type 'help' for commands, 'exit' to quit")

	fsys, dev, err := openOrFormat(fs.DefaultDiskPath)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	defer dev.Close()

	input := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("flatfs$ ")
		if !input.Scan() {
			break
		}
		line := strings.TrimSpace(input.Text())
		if line == "" {
			continue
		}
		args := strings.Fields(line)
		cmd, rest := args[0], args[1:]

		if cmd == "exit" || cmd == "quit" {
			break
		}
		dispatch(fsys, cmd, rest)
	}
}

// openOrFormat mirrors the teacher's boot.Initial_boot: reuse an existing
// disk file if present, otherwise lay a fresh one down.
func openOrFormat(path string) (*fs.Filesystem, interface{ Close() error }, error) {
	if _, err := os.Stat(path); err == nil {
		return fs.OpenDisk(path, false)
	}
	return fs.OpenDisk(path, true)
}

func dispatch(fsys *fs.Filesystem, cmd string, args []string) {
	switch cmd {
	case "help":
		printHelp()
	case "format":
		fmt.Println("already mounted; delete the disk file and restart flatfsctl to reformat")
	case "touch":
		cmdTouch(fsys, args)
	case "write":
		cmdWrite(fsys, args)
	case "cat":
		cmdCat(fsys, args)
	case "ls":
		cmdLs(fsys)
	case "stat":
		cmdStat(fsys, args)
	case "rm":
		cmdRm(fsys, args)
	case "seek":
		cmdSeek(fsys, args)
	default:
		fmt.Println("unknown command:", cmd)
	}
}

func printHelp() {
	fmt.Println(`commands:
  touch <name>          create (or reopen for append) a file
  write <name> <text>   append text to a file, closing it afterward
  cat <name>            print a file's full contents
  ls                    list all files
  stat <name>           print a file's size
  rm <name>             remove a file
  seek <name> <offset>  print the bytes from offset to EOF
  exit                  quit`)
}

func cmdTouch(fsys *fs.Filesystem, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: touch <name>")
		return
	}
	fd := fsys.Open(args[0])
	if fd == -1 {
		fmt.Println("touch: failed (duplicate open, bad name, or table full)")
		return
	}
	fsys.Close(fd)
}

func cmdWrite(fsys *fs.Filesystem, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: write <name> <text>")
		return
	}
	name := args[0]
	payload := []byte(strings.Join(args[1:], " "))

	fd := fsys.Open(name)
	if fd == -1 {
		fmt.Println("write: could not open", name)
		return
	}
	n := fsys.Write(fd, payload)
	fsys.Close(fd)
	fmt.Printf("wrote %d bytes\n", n)
}

func cmdCat(fsys *fs.Filesystem, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: cat <name>")
		return
	}
	size, ok := fsys.Stat(args[0])
	if !ok {
		fmt.Println("cat: no such file")
		return
	}
	fd := fsys.Open(args[0])
	if fd == -1 {
		fmt.Println("cat: could not open", args[0])
		return
	}
	defer fsys.Close(fd)
	if fsys.Seek(fd, 0) != 0 {
		return
	}
	buf := make([]byte, size)
	n := fsys.Read(fd, buf)
	fmt.Println(string(buf[:n]))
}

func cmdLs(fsys *fs.Filesystem) {
	count := 0
	for {
		name, ok := fsys.NextFilename()
		if !ok {
			break
		}
		size, _ := fsys.Stat(name)
		fmt.Printf("%-20s %d bytes\n", name, size)
		count++
	}
	fmt.Printf("%d file(s)\n", count)
}

func cmdStat(fsys *fs.Filesystem, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: stat <name>")
		return
	}
	size, ok := fsys.Stat(args[0])
	if !ok {
		fmt.Println("stat: no such file")
		return
	}
	fmt.Println(size, "bytes")
}

func cmdRm(fsys *fs.Filesystem, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: rm <name>")
		return
	}
	if fsys.Remove(args[0]) == -1 {
		fmt.Println("rm: no such file")
	}
}

func cmdSeek(fsys *fs.Filesystem, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: seek <name> <offset>")
		return
	}
	offset, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("seek: bad offset")
		return
	}
	size, ok := fsys.Stat(args[0])
	if !ok {
		fmt.Println("seek: no such file")
		return
	}
	fd := fsys.Open(args[0])
	if fd == -1 {
		fmt.Println("seek: could not open", args[0])
		return
	}
	defer fsys.Close(fd)
	if fsys.Seek(fd, offset) != 0 {
		fmt.Println("seek: out of range")
		return
	}
	buf := make([]byte, size-offset)
	n := fsys.Read(fd, buf)
	fmt.Println(string(buf[:n]))
}
