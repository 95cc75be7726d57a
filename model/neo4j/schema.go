// Package gate_neo4j holds the Neo4j schema vocabulary: node labels and
// relationship types the DAOs build queries from.
package gate_neo4j

// Node Labels
const (
	// LabelCompany represents a company at the top of the org tree
	LabelCompany = "Company"

	// LabelDepartment represents a department within a company
	LabelDepartment = "Department"

	// LabelPosition represents a position within a department
	LabelPosition = "Position"

	// LabelUser represents an authenticated user identity
	LabelUser = "User"

	// LabelRole represents a role that can be assigned to users
	LabelRole = "Role"

	// LabelPermission represents one capability code in the catalog
	LabelPermission = "Permission"

	// LabelMenu represents a flat menu allow-list entry
	LabelMenu = "MenuAccessList"

	// LabelParameter represents a key/value override parameter
	LabelParameter = "Parameter"
)

// Relationship Types
const (
	// RelPartOf links a department to its company and a position to its department
	RelPartOf = "PART_OF"

	// RelChildOf links a department to its parent department
	RelChildOf = "CHILD_OF"

	// RelBoundTo links a user to the position of their active org binding
	RelBoundTo = "BOUND_TO"

	// RelHasRole links a user to an assigned role
	RelHasRole = "HAS_ROLE"

	// RelHasPermission links a role to a granted permission
	RelHasPermission = "HAS_PERMISSION"

	// RelGranted links a company/department/position to a directly granted
	// permission; the relationship carries the inherited flag
	RelGranted = "GRANTED"
)
