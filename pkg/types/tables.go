package types

// Standard keyspace names, matching the underlying table layout.
const (
	TableResources = "resources"

	TableStringParameters    = "string_parameters"
	TableReferenceParameters = "reference_parameters"
	TableIntegerParameters   = "integer_parameters"
	TableAmountParameters    = "amount_parameters"
	TableDateParameters      = "date_parameters"

	TableReferences = "resource_references"
	TablePostings   = "transaction_account_amount"
	TableGrants     = "group_user_access"

	TableJournal = "journal"
)

// StandardTableNames lists all keyspaces for enumeration, in snapshot order.
var StandardTableNames = []string{
	TableResources,
	TableStringParameters,
	TableReferenceParameters,
	TableIntegerParameters,
	TableAmountParameters,
	TableDateParameters,
	TableReferences,
	TablePostings,
	TableGrants,
	TableJournal,
}
