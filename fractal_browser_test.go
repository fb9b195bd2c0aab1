package main

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"
)

func TestRunHeadlessExport(t *testing.T) {
	dir := t.TempDir()
	glb := filepath.Join(dir, "tree.glb")
	img := filepath.Join(dir, "tree.png")
	if err := run([]string{"-depth", "1", "-seed", "4", "-export", glb, "-png", img}); err != nil {
		t.Fatal(err)
	}

	data, err := ioutil.ReadFile(glb)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("glTF")) {
		t.Error("export is not a binary gltf")
	}
	if data, err = ioutil.ReadFile(img); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("snapshot is not a png")
	}
}

func TestRunReturnsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"-config", filepath.Join(t.TempDir(), "missing.yaml")},
		{"-depth", "20"},
		{"-nope"},
		// server mode stops the scheduler and hub before returning
		{"-i", "localhost:-1"},
	} {
		if err := run(args); err == nil {
			t.Errorf("run(%q) expected error", args)
		}
	}
}
