package diffreport

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jensroland/git-solentry/internal/report"
)

const sampleDiff = `diff --git a/src/Foo.java b/src/Foo.java
index 1111111..2222222 100644
--- a/src/Foo.java
+++ b/src/Foo.java
@@ -8,5 +8,6 @@ public class Foo {
     int x;
     int inc() {
-        return 0;
+        return x+1;
+        // done
     }
 }
@@ -20,3 +21,2 @@ public class Foo {
     void a() {}
-    void b() {}
     void c() {}
diff --git a/src/Old.java b/src/New.java
similarity index 90%
rename from src/Old.java
rename to src/New.java
index 3333333..4444444 100644
--- a/src/Old.java
+++ b/src/New.java
@@ -1,3 +1,4 @@
 class New {
+    int y;
     int z;
 }
diff --git a/src/Added.java b/src/Added.java
new file mode 100644
index 0000000..5555555
--- /dev/null
+++ b/src/Added.java
@@ -0,0 +1,2 @@
+class Added {
+}
`

func TestParseUnified(t *testing.T) {
	entries, err := ParseUnified(sampleDiff)
	require.NoError(t, err)

	want := []report.DiffEntry{
		{FilePath: "src/Added.java", StartLine: 1, EndLine: 2, ChangeKind: report.Added},
		{FilePath: "src/Foo.java", StartLine: 10, EndLine: 11, ChangeKind: report.Modified},
		{FilePath: "src/Foo.java", StartLine: 22, EndLine: 22, ChangeKind: report.Removed},
		{FilePath: "src/New.java", PreviousFilePath: "src/Old.java", StartLine: 2, EndLine: 2, ChangeKind: report.Added},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("ParseUnified mismatch (-want +got):\n%s", diff)
	}
}

func TestParseUnified_Empty(t *testing.T) {
	entries, err := ParseUnified("  \n")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseUnified_DeletedFile(t *testing.T) {
	text := `diff --git a/src/Gone.java b/src/Gone.java
deleted file mode 100644
index 5555555..0000000
--- a/src/Gone.java
+++ /dev/null
@@ -1,2 +0,0 @@
-class Gone {
-}
`
	entries, err := ParseUnified(text)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, report.Removed, entries[0].ChangeKind)
	assert.Equal(t, "src/Gone.java", entries[0].FilePath)
	assert.Equal(t, 1, entries[0].StartLine)
}

func TestCompare(t *testing.T) {
	template := map[string]string{
		"src/Foo.java":  "class Foo {\n    int inc() {\n        return 0;\n    }\n}\n",
		"src/Same.java": "class Same {}\n",
		"src/Gone.java": "class Gone {}\n",
	}
	solution := map[string]string{
		"src/Foo.java":  "class Foo {\n    int inc() {\n        return x+1;\n    }\n}\n",
		"src/Same.java": "class Same {}\n",
		"src/New.java":  "class New {\n}\n",
	}

	entries := Compare(template, solution)
	want := []report.DiffEntry{
		{FilePath: "src/Foo.java", StartLine: 3, EndLine: 3, ChangeKind: report.Modified},
		{FilePath: "src/Gone.java", PreviousFilePath: "src/Gone.java", StartLine: 1, EndLine: 1, ChangeKind: report.Removed},
		{FilePath: "src/New.java", StartLine: 1, EndLine: 2, ChangeKind: report.Added},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("Compare mismatch (-want +got):\n%s", diff)
	}
}

func TestCompare_InsertedBlock(t *testing.T) {
	template := map[string]string{"A.java": "a\nb\nc\n"}
	solution := map[string]string{"A.java": "a\nx\ny\nb\nc\nz\n"}

	entries := Compare(template, solution)
	require.Len(t, entries, 2)
	assert.Equal(t, report.DiffEntry{FilePath: "A.java", StartLine: 2, EndLine: 3, ChangeKind: report.Added}, entries[0])
	assert.Equal(t, report.DiffEntry{FilePath: "A.java", StartLine: 6, EndLine: 6, ChangeKind: report.Added}, entries[1])
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, countLines(""))
	assert.Equal(t, 1, countLines("a"))
	assert.Equal(t, 1, countLines("a\n"))
	assert.Equal(t, 2, countLines("a\nb"))
	assert.Equal(t, 3, countLines("a\nb\nc\n"))
}
