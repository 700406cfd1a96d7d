package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Stats prints Go lines of code per directory and documentation word counts
// (README.md and package doc comments) as one JSON record.
func Stats() error {
	var prodLines, testLines int
	perDir := map[string]int{}

	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			switch path {
			case "vendor", ".git", binaryDir, "magefiles", "_examples":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		count, countErr := countLines(path)
		if countErr != nil {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") {
			testLines += count
		} else {
			prodLines += count
		}
		perDir[filepath.Dir(path)] += count
		return nil
	})
	if err != nil {
		return err
	}

	readmeWords, err := countWordsInFile("README.md")
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	pkgDocWords, err := countPackageDocWords()
	if err != nil {
		return err
	}

	record := map[string]any{
		"go_loc_prod":   prodLines,
		"go_loc_test":   testLines,
		"go_loc":        prodLines + testLines,
		"go_loc_dirs":   perDir,
		"doc_wc_readme": readmeWords,
		"doc_wc_pkg":    pkgDocWords,
	}
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

// countPackageDocWords counts the words of every package comment under cmd,
// internal and pkg. Most packages keep theirs in doc.go.
func countPackageDocWords() (int, error) {
	total := 0
	fset := token.NewFileSet()
	for _, root := range []string{"cmd", "internal", "pkg"} {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			f, parseErr := parser.ParseFile(fset, path, nil, parser.PackageClauseOnly|parser.ParseComments)
			if parseErr != nil {
				return parseErr
			}
			if f.Doc != nil {
				total += countWords(f.Doc.Text())
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

func countWordsInFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return countWords(string(data)), nil
}

func countWords(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			inWord = false
		} else if !inWord {
			inWord = true
			count++
		}
	}
	return count
}
