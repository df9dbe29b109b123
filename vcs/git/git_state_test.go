package git

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryStateSignature_ChangesAfterCommit(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	setupGitRepo(t, dir)

	createFile(t, dir, "p/A.java", "package p;\npublic class A {}\n")
	gitAdd(t, dir, ".")
	gitCommit(t, dir, "initial")

	before, err := RepositoryStateSignature(ctx, dir)
	require.NoError(t, err)

	createFile(t, dir, "p/A.java", "package p;\npublic class A {\n    public void run() {}\n}\n")
	gitAdd(t, dir, ".")
	gitCommit(t, dir, "second")

	after, err := RepositoryStateSignature(ctx, dir)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestRepositoryStateSignature_ChangesOnStagingTransition(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	setupGitRepo(t, dir)

	createFile(t, dir, "p/A.java", "package p;\npublic class A {}\n")
	gitAdd(t, dir, ".")
	gitCommit(t, dir, "initial")

	clean, err := RepositoryStateSignature(ctx, dir)
	require.NoError(t, err)

	createFile(t, dir, "p/A.java", "package p;\npublic final class A {}\n")
	dirtyUnstaged, err := RepositoryStateSignature(ctx, dir)
	require.NoError(t, err)

	gitAdd(t, dir, ".")
	dirtyStaged, err := RepositoryStateSignature(ctx, dir)
	require.NoError(t, err)

	assert.NotEqual(t, clean, dirtyUnstaged)
	assert.NotEqual(t, dirtyUnstaged, dirtyStaged)
}

func TestRepositoryStateSignature_UnbornHead(t *testing.T) {
	dir := t.TempDir()
	setupGitRepo(t, dir)

	sig, err := RepositoryStateSignature(context.Background(), dir)
	require.NoError(t, err)
	assert.Contains(t, sig, unbornHeadSignature)
}
