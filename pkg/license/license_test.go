package license

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mitText = `MIT License

Copyright (c) 2021 Jane Developer

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction...`

const bsd3Text = `Copyright (c) 2006, Example Project
All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:

Neither the name of the Example Project nor the names of its contributors
may be used to endorse or promote products derived from this software...`

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"mit", mitText, "MIT"},
		{"bsd3", bsd3Text, "BSD-3-Clause"},
		{"bsd2", "Redistribution and use in source and binary forms are permitted.", "BSD-2-Clause"},
		{"apache", "Apache License\nVersion 2.0, January 2004", "Apache-2.0"},
		{"gpl3", "GNU GENERAL PUBLIC LICENSE\nVersion 3, 29 June 2007", "GPL-3.0"},
		{"gpl2", "GNU GENERAL PUBLIC LICENSE\nVersion 2, June 1991", "GPL-2.0"},
		{"lgpl21", "GNU LESSER GENERAL PUBLIC LICENSE\nVersion 2.1, February 1999", "LGPL-2.1"},
		{"lgpl3", "GNU LESSER GENERAL PUBLIC LICENSE\nVersion 3, 29 June 2007", "LGPL-3.0"},
		{"mpl2", "Mozilla Public License Version 2.0", "MPL-2.0"},
		{"isc", "Permission to use, copy, modify, and/or distribute this software...", "ISC"},
		{"psf", "PYTHON SOFTWARE FOUNDATION LICENSE VERSION 2", "PSF-2.0"},
		{"unknown", "All rights reserved. Ask before using.", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassifySPDXTagWins(t *testing.T) {
	text := "// SPDX-License-Identifier: Apache-2.0\n" + mitText
	assert.Equal(t, "Apache-2.0", Classify(text))
}

func TestCopyrights(t *testing.T) {
	text := `Copyright (c) 2017-2021 Ingy dot Net
Copyright (c) 2006-2016 Kirill Simonov
Copyright (c) 2017-2021 Ingy dot Net

Permission is hereby granted...`

	got := Copyrights(text)
	require.Len(t, got, 2, "duplicates collapse")
	assert.Equal(t, "Copyright (c) 2017-2021 Ingy dot Net", got[0])
	assert.Equal(t, "Copyright (c) 2006-2016 Kirill Simonov", got[1])

	assert.Empty(t, Copyrights("no statements here"))
}

func TestExtract(t *testing.T) {
	info := Extract(mitText)
	assert.Equal(t, "MIT", info.Type)
	require.Len(t, info.Copyrights, 1)
	assert.Equal(t, "Copyright (c) 2021 Jane Developer", info.Copyrights[0])
	assert.Equal(t, mitText, info.Text)
	assert.Empty(t, info.SPDXID)
}

func TestExtractTruncates(t *testing.T) {
	long := mitText + strings.Repeat("x", maxTextLength)
	info := Extract(long)
	assert.Equal(t, "MIT", info.Type)
	assert.Len(t, info.Text, maxTextLength)
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "LICENSE")
	require.NoError(t, os.WriteFile(path, []byte(bsd3Text), 0o644))

	info, err := ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, "BSD-3-Clause", info.Type)
	assert.Equal(t, path, info.FilePath)

	_, err = ExtractFile(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestIsLicenseFile(t *testing.T) {
	for _, name := range []string{
		"LICENSE", "LICENSE.txt", "LICENSE.md", "license", "LICENCE",
		"COPYING", "COPYING.txt", "NOTICE", "LICENSE-MIT", "LICENSE.BSD",
	} {
		assert.True(t, IsLicenseFile(name), name)
	}
	for _, name := range []string{
		"README.md", "main.go", "licensing_guide.md", "setup.py",
	} {
		assert.False(t, IsLicenseFile(name), name)
	}
}
