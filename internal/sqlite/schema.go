// Package sqlite implements the SQLite backend for the resourcestore engine.
package sqlite

// Schema DDL for all tables. One resource keyspace, five typed attribute
// keyspaces, three relation keyspaces, the back-reference counter, and the
// change journal.
const (
	createResources = `CREATE TABLE resources (
    id INTEGER PRIMARY KEY,
    type TEXT NOT NULL,
    resource TEXT
);`

	createStringParameters = `CREATE TABLE string_parameters (
    id INTEGER NOT NULL,
    param_name TEXT NOT NULL,
    param_value TEXT NOT NULL,
    PRIMARY KEY (id, param_name, param_value)
);`

	createReferenceParameters = `CREATE TABLE reference_parameters (
    id INTEGER NOT NULL,
    param_name TEXT NOT NULL,
    param_value INTEGER NOT NULL,
    PRIMARY KEY (id, param_name, param_value)
);`

	createIntegerParameters = `CREATE TABLE integer_parameters (
    id INTEGER NOT NULL,
    param_name TEXT NOT NULL,
    param_value INTEGER NOT NULL,
    PRIMARY KEY (id, param_name, param_value)
);`

	createAmountParameters = `CREATE TABLE amount_parameters (
    id INTEGER NOT NULL,
    param_name TEXT NOT NULL,
    param_value INTEGER NOT NULL,
    PRIMARY KEY (id, param_name, param_value)
);`

	createDateParameters = `CREATE TABLE date_parameters (
    id INTEGER NOT NULL,
    param_name TEXT NOT NULL,
    param_value TEXT NOT NULL,
    PRIMARY KEY (id, param_name, param_value)
);`

	createReferences = `CREATE TABLE resource_references (
    id INTEGER NOT NULL,
    reference_id INTEGER NOT NULL,
    PRIMARY KEY (id, reference_id)
);`

	createPostings = `CREATE TABLE transaction_account_amount (
    id INTEGER NOT NULL,
    account INTEGER NOT NULL,
    amount INTEGER NOT NULL,
    PRIMARY KEY (id, account)
);`

	createGrants = `CREATE TABLE group_user_access (
    id INTEGER NOT NULL,
    user_ INTEGER NOT NULL,
    access INTEGER NOT NULL,
    PRIMARY KEY (id, user_)
);`

	// backrefs counts, per resource id, the rows anywhere in the store that
	// mention the id from the outside: reference-attribute values, relation
	// endpoints, posting transaction/account ids, grant group/user ids.
	// Maintained incrementally on every referencing write so the delete-time
	// integrity check is a single row lookup.
	createBackrefs = `CREATE TABLE backrefs (
    id INTEGER PRIMARY KEY,
    refs INTEGER NOT NULL
);`

	createJournal = `CREATE TABLE journal (
    entry_id TEXT PRIMARY KEY,
    op TEXT NOT NULL,
    resource_id INTEGER NOT NULL,
    detail TEXT,
    created_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxResourcesType   = `CREATE INDEX idx_resources_type ON resources(type);`
	idxReferencesTo    = `CREATE INDEX idx_references_to ON resource_references(reference_id);`
	idxPostingsAccount = `CREATE INDEX idx_postings_account ON transaction_account_amount(account);`
	idxGrantsUser      = `CREATE INDEX idx_grants_user ON group_user_access(user_);`
	idxJournalResource = `CREATE INDEX idx_journal_resource ON journal(resource_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createResources,
	createStringParameters,
	createReferenceParameters,
	createIntegerParameters,
	createAmountParameters,
	createDateParameters,
	createReferences,
	createPostings,
	createGrants,
	createBackrefs,
	createJournal,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxResourcesType,
	idxReferencesTo,
	idxPostingsAccount,
	idxGrantsUser,
	idxJournalResource,
}
