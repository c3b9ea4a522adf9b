package service

import "context"

type testTxRepos struct {
	chunks    ChunkRepositoryInterface
	indexJobs IndexJobRepositoryInterface
}

func (t *testTxRepos) Chunks() ChunkRepositoryInterface {
	return t.chunks
}

func (t *testTxRepos) IndexJobs() IndexJobRepositoryInterface {
	return t.indexJobs
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	return fn(t.repos)
}
