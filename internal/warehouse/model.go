// Package warehouse declares the multi-LIMS warehouse tables this module
// knows about and the queries that run against them.
package warehouse

import (
	"strconv"
	"sync"

	"github.com/tordrt/mlwarehouse/internal/schema"
)

// KnownTypeExceptions lists table.column pairs whose declared type is known
// to differ from production and is excluded from conformance checks.
var KnownTypeExceptions = []string{
	"iseq_external_product_components.id_iseq_product_ext",
}

var (
	modelOnce sync.Once
	model     *schema.Model
)

// Model returns the compiled-in warehouse declarations
func Model() *schema.Model {
	modelOnce.Do(func() {
		model = schema.MustModel(
			study(),
			sample(),
			studyUsers(),
			iseqRunStatusDict(),
			iseqRunStatus(),
			iseqRunLaneMetrics(),
			oseqFlowcell(),
			pacBioRun(),
			flgenPlate(),
			seqProductIrodsLocations(),
		)
	})
	return model
}

type columnOption func(*schema.Column)

func notNull(c *schema.Column) { c.Nullable = false }
func unique(c *schema.Column)  { c.IsUnique = true }
func indexed(c *schema.Column) { c.IsIndexed = true }

func comment(text string) columnOption {
	return func(c *schema.Column) { c.Comment = text }
}

func defaults(value string) columnOption {
	return func(c *schema.Column) { c.DefaultValue = &value }
}

// col declares a nullable column; options refine it
func col(name, typ string, opts ...columnOption) schema.Column {
	c := schema.Column{Name: name, Type: typ, Nullable: true}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// pk declares a single-column primary key column
func pk(name, typ string, opts ...columnOption) schema.Column {
	return col(name, typ, append([]columnOption{notNull}, opts...)...)
}

// strings255 declares a run of nullable VARCHAR(255) columns
func strings255(names ...string) []schema.Column {
	cols := make([]schema.Column, len(names))
	for i, name := range names {
		cols[i] = col(name, "VARCHAR(255)")
	}
	return cols
}

func varchar(width int) string {
	return "VARCHAR(" + strconv.Itoa(width) + ")"
}

func ref(column, table, referred string) schema.ForeignKeyRef {
	return schema.ForeignKeyRef{Column: column, ReferredTable: table, ReferredColumn: referred}
}

const (
	typeID        = "INTEGER(10) UNSIGNED"
	typeFlag      = "TINYINT(1)"
	typeTimestamp = "DATETIME"

	internalIDComment = "Internal to this database id, value can change"
	lastUpdated       = "Timestamp of last update"
	recordedAt        = "Timestamp of warehouse update"
	currentTimestamp  = "CURRENT_TIMESTAMP"
	onUpdateTimestamp = "CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP"
)

func study() schema.Entity {
	cols := []schema.Column{
		pk("id_study_tmp", typeID, comment(internalIDComment)),
		col("id_lims", "VARCHAR(10)", notNull, comment("LIM system identifier, e.g. GCLP-CLARITY, SEQSCAPE")),
		col("id_study_lims", "VARCHAR(20)", notNull, comment("LIMS-specific study identifier")),
		col("last_updated", typeTimestamp, notNull, comment(lastUpdated)),
		col("recorded_at", typeTimestamp, notNull, comment(recordedAt)),
		col("remove_x_and_autosomes", typeFlag, notNull, defaults("'0'")),
		col("aligned", typeFlag, notNull, defaults("'1'")),
		col("separate_y_chromosome_data", typeFlag, notNull, defaults("'0'")),
		col("uuid_study_lims", "VARCHAR(36)", unique, comment("LIMS-specific study uuid")),
		col("deleted_at", typeTimestamp, comment("Timestamp of study deletion")),
		col("created", typeTimestamp, comment("Timestamp of study creation")),
		col("name", "VARCHAR(255)", indexed),
		col("reference_genome", "VARCHAR(255)"),
		col("ethically_approved", typeFlag),
		col("faculty_sponsor", "VARCHAR(255)"),
		col("state", "VARCHAR(50)"),
		col("study_type", "VARCHAR(50)"),
		col("abstract", "TEXT"),
		col("abbreviation", "VARCHAR(255)"),
		col("accession_number", "VARCHAR(50)", indexed),
		col("description", "TEXT"),
		col("contains_human_dna", typeFlag, comment("Lane may contain human DNA")),
		col("contaminated_human_dna", typeFlag, comment("Human DNA in the lane is a contaminant and should be removed")),
	}
	cols = append(cols, strings255(
		"data_release_strategy",
		"data_release_sort_of_study",
		"ena_project_id",
		"study_title",
		"study_visibility",
		"ega_dac_accession_number",
		"array_express_accession_number",
		"ega_policy_accession_number",
		"data_release_timing",
		"data_release_delay_period",
		"data_release_delay_reason",
		"data_access_group",
	)...)
	cols = append(cols,
		col("prelim_id", "VARCHAR(20)", comment("The preliminary study id prior to entry into the LIMS")),
		col("hmdmc_number", "VARCHAR(255)", comment("The Human Materials and Data Management Committee approval number(s) for the study.")),
		col("data_destination", "VARCHAR(255)", comment("The data destination type(s) for the study. It could be 'standard', '14mg' or 'gseq'.")),
		col("s3_email_list", "VARCHAR(255)"),
		col("data_deletion_period", "VARCHAR(255)"),
	)

	return schema.Entity{
		Name:       "study",
		Comment:    "Studies registered in any of the LIMS",
		Columns:    cols,
		PrimaryKey: []string{"id_study_tmp"},
	}
}

func sample() schema.Entity {
	cols := []schema.Column{
		pk("id_sample_tmp", typeID, comment(internalIDComment)),
		col("id_lims", "VARCHAR(10)", notNull, comment("LIM system identifier, e.g. CLARITY-GCLP, SEQSCAPE")),
		col("id_sample_lims", "VARCHAR(20)", notNull, comment("LIMS-specific sample identifier")),
		col("last_updated", typeTimestamp, notNull, comment(lastUpdated)),
		col("recorded_at", typeTimestamp, notNull, comment(recordedAt)),
		col("consent_withdrawn", typeFlag, notNull, defaults("'0'")),
		col("uuid_sample_lims", "VARCHAR(36)", unique, comment("LIMS-specific sample uuid")),
		col("deleted_at", typeTimestamp, comment("Timestamp of sample deletion")),
		col("created", typeTimestamp, comment("Timestamp of sample creation")),
		col("name", "VARCHAR(255)", indexed),
		col("reference_genome", "VARCHAR(255)"),
		col("organism", "VARCHAR(255)"),
		col("accession_number", "VARCHAR(50)", indexed),
		col("common_name", "VARCHAR(255)"),
		col("description", "TEXT"),
		col("taxon_id", "INTEGER(6) UNSIGNED"),
	}
	cols = append(cols, strings255(
		"father",
		"mother",
		"replicate",
		"ethnicity",
	)...)
	cols = append(cols,
		col("gender", "VARCHAR(20)"),
		col("cohort", "VARCHAR(255)"),
		col("country_of_origin", "VARCHAR(255)"),
		col("geographical_region", "VARCHAR(255)"),
		col("sanger_sample_id", "VARCHAR(255)", indexed),
		col("control", typeFlag),
		col("supplier_name", "VARCHAR(255)", indexed),
		col("public_name", "VARCHAR(255)"),
		col("sample_visibility", "VARCHAR(255)"),
		col("strain", "VARCHAR(255)"),
		col("donor_id", "VARCHAR(255)"),
		col("phenotype", "VARCHAR(255)", comment("The phenotype of the sample as described in Sequencescape")),
		col("developmental_stage", "VARCHAR(255)", comment("Developmental Stage")),
		col("control_type", "VARCHAR(255)"),
		col("sibling", "VARCHAR(255)"),
		col("is_resubmitted", typeFlag),
	)
	cols = append(cols, strings255(
		"date_of_sample_collection",
		"date_of_sample_extraction",
		"extraction_method",
		"purified",
		"purification_method",
		"customer_measured_concentration",
		"concentration_determined_by",
		"sample_type",
		"storage_conditions",
		"genotype",
		"age",
		"cell_type",
		"disease_state",
		"compound",
		"dose",
		"immunoprecipitate",
		"growth_condition",
		"organism_part",
		"time_point",
		"disease",
		"subject",
		"treatment",
	)...)
	cols = append(cols, col("date_of_consent_withdrawn", typeTimestamp))
	cols = append(cols, strings255(
		"marked_as_consent_withdrawn_by",
		"customer_measured_volume",
		"gc_content",
		"dna_source",
	)...)

	return schema.Entity{
		Name:       "sample",
		Comment:    "Samples registered in any of the LIMS",
		Columns:    cols,
		PrimaryKey: []string{"id_sample_tmp"},
	}
}

func studyUsers() schema.Entity {
	return schema.Entity{
		Name: "study_users",
		Columns: []schema.Column{
			pk("id_study_users_tmp", typeID, comment(internalIDComment)),
			col("id_study_tmp", typeID, notNull, indexed, comment(`Study id, see "study.id_study_tmp"`)),
			col("last_updated", typeTimestamp, notNull, comment(lastUpdated)),
			col("role", "VARCHAR(255)"),
			col("login", "VARCHAR(255)"),
			col("email", "VARCHAR(255)"),
			col("name", "VARCHAR(255)"),
		},
		PrimaryKey:  []string{"id_study_users_tmp"},
		ForeignKeys: []schema.ForeignKeyRef{ref("id_study_tmp", "study", "id_study_tmp")},
	}
}

func iseqRunStatusDict() schema.Entity {
	return schema.Entity{
		Name: "iseq_run_status_dict",
		Columns: []schema.Column{
			pk("id_run_status_dict", typeID),
			col("description", "VARCHAR(64)", notNull, indexed),
			col("iscurrent", "TINYINT(3) UNSIGNED", notNull),
			col("temporal_index", "SMALLINT(5) UNSIGNED"),
		},
		PrimaryKey: []string{"id_run_status_dict"},
	}
}

func iseqRunStatus() schema.Entity {
	return schema.Entity{
		Name: "iseq_run_status",
		Columns: []schema.Column{
			pk("id_run_status", "INTEGER(11) UNSIGNED"),
			col("id_run", typeID, notNull, indexed, comment("NPG run identifier")),
			col("date", typeTimestamp, notNull, comment("Status timestamp")),
			col("id_run_status_dict", typeID, notNull, indexed, comment("Status identifier, see iseq_run_status_dict.id_run_status_dict")),
			col("iscurrent", typeFlag, notNull, comment("Boolean flag, 1 is the status is current, 0 otherwise")),
		},
		PrimaryKey:  []string{"id_run_status"},
		ForeignKeys: []schema.ForeignKeyRef{ref("id_run_status_dict", "iseq_run_status_dict", "id_run_status_dict")},
	}
}

func iseqRunLaneMetrics() schema.Entity {
	cols := []schema.Column{
		col("id_run", typeID, notNull, comment("NPG run identifier")),
		col("position", "SMALLINT(2) UNSIGNED", notNull, comment("Flowcell lane number")),
		col("paired_read", "TINYINT(1) UNSIGNED", notNull, defaults("'0'")),
		col("cycles", "INTEGER(4) UNSIGNED", notNull),
		col("cancelled", "TINYINT(1) UNSIGNED", notNull, defaults("'0'"), comment("Boolen flag to indicate whether the run was cancelled")),
		col("flowcell_barcode", "VARCHAR(15)", comment("Manufacturer flowcell barcode or other identifier as recorded by NPG")),
		col("last_changed", typeTimestamp, defaults(onUpdateTimestamp), comment("Date this record was created or changed")),
		col("qc_seq", typeFlag, comment("Sequencing lane level QC outcome, a result of either manual or automatic assessment by core")),
		col("instrument_name", "CHAR(32)"),
		col("instrument_external_name", "CHAR(10)", comment("Name assigned to the instrument by the manufacturer")),
		col("instrument_model", "CHAR(64)"),
		col("instrument_side", "CHAR(1)", comment("Illumina instrument side (A or B), if appropriate")),
		col("workflow_type", "VARCHAR(20)", comment("Illumina instrument workflow type")),
		col("run_pending", typeTimestamp, comment("Timestamp of run pending status")),
		col("run_complete", typeTimestamp, comment("Timestamp of run complete status")),
		col("qc_complete", typeTimestamp, comment("Timestamp of qc complete status")),
		col("pf_cluster_count", "BIGINT(20) UNSIGNED"),
		col("raw_cluster_count", "BIGINT(20) UNSIGNED"),
		col("raw_cluster_density", "DOUBLE(12, 3) UNSIGNED"),
		col("pf_cluster_density", "DOUBLE(12, 3) UNSIGNED"),
		col("pf_bases", "BIGINT(20) UNSIGNED"),
	}
	for _, name := range []string{
		"q20_yield_kb_forward_read",
		"q20_yield_kb_reverse_read",
		"q30_yield_kb_forward_read",
		"q30_yield_kb_reverse_read",
		"q40_yield_kb_forward_read",
		"q40_yield_kb_reverse_read",
	} {
		cols = append(cols, col(name, typeID))
	}
	cols = append(cols,
		col("tags_decode_percent", "FLOAT(5, 2) UNSIGNED"),
		col("tags_decode_cv", "FLOAT(6, 2) UNSIGNED"),
		col("unexpected_tags_percent", "FLOAT(5, 2) UNSIGNED", comment("tag0_perfect_match_reads as a percentage of total_lane_reads")),
		col("tag_hops_percent", "FLOAT UNSIGNED", comment("Percentage tag hops for dual index runs")),
		col("tag_hops_power", "FLOAT UNSIGNED", comment("Power to detect tag hops for dual index runs")),
		col("run_priority", "TINYINT(3)", comment("Sequencing lane level run priority, a result of either manual or default value set by core")),
		col("interop_cluster_count_total", "BIGINT(20) UNSIGNED", comment("Total cluster count for this lane (derived from Illumina InterOp files)")),
		col("interop_cluster_count_mean", "DOUBLE UNSIGNED", comment("Total cluster count, mean value over tiles of this lane (derived from Illumina InterOp files)")),
		col("interop_cluster_count_stdev", "DOUBLE UNSIGNED", comment("Standard deviation value for interop_cluster_count_mean")),
		col("interop_cluster_count_pf_total", "BIGINT(20) UNSIGNED", comment("Purity-filtered cluster count for this lane (derived from Illumina InterOp files)")),
		col("interop_cluster_count_pf_mean", "DOUBLE UNSIGNED", comment("Purity-filtered cluster count, mean value over tiles of this lane (derived from Illumina InterOp files)")),
		col("interop_cluster_count_pf_stdev", "DOUBLE UNSIGNED", comment("Standard deviation value for interop_cluster_count_pf_mean")),
		col("interop_cluster_density_mean", "DOUBLE UNSIGNED", comment("Cluster density, mean value over tiles of this lane (derived from Illumina InterOp files)")),
		col("interop_cluster_density_stdev", "DOUBLE UNSIGNED", comment("Standard deviation value for interop_cluster_density_mean")),
		col("interop_cluster_density_pf_mean", "DOUBLE UNSIGNED", comment("Purity-filtered cluster density, mean value over tiles of this lane (derived from Illumina InterOp files)")),
		col("interop_cluster_density_pf_stdev", "DOUBLE UNSIGNED", comment("Standard deviation value for interop_cluster_density_pf_mean")),
		col("interop_cluster_pf_mean", "FLOAT(5, 2) UNSIGNED", comment("Percent of purity-filtered clusters, mean value over tiles of this lane (derived from Illumina InterOp files)")),
		col("interop_cluster_pf_stdev", "FLOAT(5, 2) UNSIGNED", comment("Standard deviation value for interop_cluster_pf_mean")),
		col("interop_occupied_mean", "FLOAT(5, 2) UNSIGNED", comment("Percent of occupied flowcell wells, a mean value over tiles of this lane (derived from Illumina InterOp files)")),
		col("interop_occupied_stdev", "FLOAT(5, 2) UNSIGNED", comment("Standard deviation value for interop_occupied_mean")),
	)

	return schema.Entity{
		Name:       "iseq_run_lane_metrics",
		Comment:    "Illumina lane level run metrics recorded by NPG",
		Columns:    cols,
		PrimaryKey: []string{"id_run", "position"},
	}
}

// tagColumns declares the first and second tag columns of a flowcell-like
// table. widths gives the identifier, sequence, set id and set name widths.
func tagColumns(widths [4]int) []schema.Column {
	var cols []schema.Column
	for _, prefix := range []string{"tag", "tag2"} {
		cols = append(cols,
			col(prefix+"_identifier", varchar(widths[0])),
			col(prefix+"_sequence", varchar(widths[1])),
			col(prefix+"_set_id_lims", varchar(widths[2])),
			col(prefix+"_set_name", varchar(widths[3])),
		)
	}
	return cols
}

func oseqFlowcell() schema.Entity {
	cols := []schema.Column{
		pk("id_oseq_flowcell_tmp", typeID),
		col("id_flowcell_lims", "VARCHAR(255)", notNull, comment("LIMs-specific flowcell id")),
		col("last_updated", typeTimestamp, notNull, comment(lastUpdated)),
		col("recorded_at", typeTimestamp, notNull, comment(recordedAt)),
		col("id_sample_tmp", typeID, notNull, indexed, comment(`Sample id, see "sample.id_sample_tmp"`)),
		col("id_study_tmp", typeID, notNull, indexed, comment(`Study id, see "study.id_study_tmp"`)),
		col("experiment_name", "VARCHAR(255)", notNull, comment("The name of the experiment, eg. The lims generated run id")),
		col("instrument_name", "VARCHAR(255)", notNull, comment("The name of the instrument on which the sample was run")),
		col("instrument_slot", "INTEGER(11)", notNull, comment("The numeric identifier of the slot on which the sample was run")),
		col("id_lims", "VARCHAR(10)", notNull, comment("LIM system identifier")),
		col("pipeline_id_lims", "VARCHAR(255)", comment("LIMs-specific pipeline identifier that unambiguously defines library type")),
		col("requested_data_type", "VARCHAR(255)", comment("The type of data produced by sequencing, eg. basecalls only")),
		col("deleted_at", typeTimestamp, comment("Timestamp of any flowcell destruction")),
	}
	cols = append(cols, tagColumns([4]int{255, 255, 255, 255})...)

	return schema.Entity{
		Name:       "oseq_flowcell",
		Comment:    "Oxford Nanopore flowcells and the libraries loaded on them",
		Columns:    cols,
		PrimaryKey: []string{"id_oseq_flowcell_tmp"},
		ForeignKeys: []schema.ForeignKeyRef{
			ref("id_sample_tmp", "sample", "id_sample_tmp"),
			ref("id_study_tmp", "study", "id_study_tmp"),
		},
	}
}

func pacBioRun() schema.Entity {
	cols := []schema.Column{
		pk("id_pac_bio_tmp", "INTEGER(11)"),
		col("last_updated", typeTimestamp, notNull, comment(lastUpdated)),
		col("recorded_at", typeTimestamp, notNull, comment(recordedAt)),
		col("id_sample_tmp", typeID, notNull, indexed, comment(`Sample id, see "sample.id_sample_tmp"`)),
		col("id_study_tmp", typeID, notNull, indexed, comment(`Sample id, see "study.id_study_tmp"`)),
		col("id_pac_bio_run_lims", "VARCHAR(20)", notNull, comment("Lims specific identifier for the pacbio run")),
		col("cost_code", "VARCHAR(20)", notNull, comment("Valid WTSI cost-code")),
		col("id_lims", "VARCHAR(10)", notNull, comment("LIM system identifier")),
		col("plate_barcode", "VARCHAR(255)", notNull, comment("The human readable barcode for the plate loaded onto the machine")),
		col("plate_uuid_lims", "VARCHAR(36)", notNull, comment("The plate uuid")),
		col("well_label", "VARCHAR(255)", notNull, comment("The well identifier for the plate, A1-H12")),
		col("well_uuid_lims", "VARCHAR(36)", notNull, comment("The well uuid")),
		col("pac_bio_library_tube_id_lims", "VARCHAR(255)", notNull, comment("LIMS specific identifier for originating library tube")),
		col("pac_bio_library_tube_uuid", "VARCHAR(255)", notNull, comment("The uuid for the originating library tube")),
		col("pac_bio_library_tube_name", "VARCHAR(255)", notNull, comment("The name of the originating library tube")),
		col("pac_bio_run_uuid", "VARCHAR(36)", comment("Uuid identifier for the pacbio run")),
	}
	cols = append(cols, tagColumns([4]int{30, 30, 20, 100})...)
	cols = append(cols,
		col("pac_bio_library_tube_legacy_id", "INTEGER(11)", comment("Legacy library_id for backwards compatibility.")),
		col("library_created_at", typeTimestamp, comment("Timestamp of library creation")),
		col("pac_bio_run_name", "VARCHAR(255)", comment("Name of the run")),
		col("pipeline_id_lims", "VARCHAR(60)", comment("LIMS-specific pipeline identifier that unambiguously defines library type (eg. Sequel-v1, IsoSeq-v1)")),
		col("comparable_tag_identifier", "VARCHAR(255)"),
		col("comparable_tag2_identifier", "VARCHAR(255)"),
	)

	return schema.Entity{
		Name:       "pac_bio_run",
		Comment:    "PacBio runs with one row per library in a well",
		Columns:    cols,
		PrimaryKey: []string{"id_pac_bio_tmp"},
		ForeignKeys: []schema.ForeignKeyRef{
			ref("id_sample_tmp", "sample", "id_sample_tmp"),
			ref("id_study_tmp", "study", "id_study_tmp"),
		},
	}
}

func flgenPlate() schema.Entity {
	return schema.Entity{
		Name:    "flgen_plate",
		Comment: "Fluidigm genotyping plates, one row per well",
		Columns: []schema.Column{
			pk("id_flgen_plate_tmp", typeID, comment(internalIDComment)),
			col("id_sample_tmp", typeID, notNull, indexed, comment(`Sample id, see "sample.id_sample_tmp"`)),
			col("id_study_tmp", typeID, notNull, indexed, comment(`Study id, see "study.id_study_tmp"`)),
			col("cost_code", "VARCHAR(20)", notNull, comment("Valid WTSI cost code")),
			col("id_lims", "VARCHAR(10)", notNull, comment("LIM system identifier, e.g. CLARITY-GCLP, SEQSCAPE")),
			col("last_updated", typeTimestamp, notNull, comment(lastUpdated)),
			col("recorded_at", typeTimestamp, notNull, comment(recordedAt)),
			col("plate_barcode", typeID, notNull, comment("Manufacturer (Fluidigm) chip barcode")),
			col("id_flgen_plate_lims", "VARCHAR(20)", notNull, comment("LIMs-specific plate id")),
			col("well_label", "VARCHAR(10)", notNull, comment("Manufactuer well identifier within a plate, S001-S192")),
			col("plate_barcode_lims", "VARCHAR(128)", comment("LIMs-specific plate barcode")),
			col("plate_uuid_lims", "VARCHAR(36)", comment("LIMs-specific plate uuid")),
			col("plate_size", "SMALLINT(6)", comment("Total number of wells on a plate")),
			col("plate_size_occupied", "SMALLINT(6)", comment("Number of occupied wells on a plate")),
			col("well_uuid_lims", "VARCHAR(36)", comment("LIMs-specific well uuid")),
			col("qc_state", typeFlag, comment("QC state; 1 (pass), 0 (fail), NULL (not known)")),
		},
		PrimaryKey: []string{"id_flgen_plate_tmp"},
		ForeignKeys: []schema.ForeignKeyRef{
			ref("id_sample_tmp", "sample", "id_sample_tmp"),
			ref("id_study_tmp", "study", "id_study_tmp"),
		},
	}
}

func seqProductIrodsLocations() schema.Entity {
	return schema.Entity{
		Name:    "seq_product_irods_locations",
		Comment: "Table relating products to their irods locations",
		Columns: []schema.Column{
			pk("id_seq_product_irods_locations_tmp", "BIGINT(20) UNSIGNED", comment(internalIDComment)),
			col("id_product", "VARCHAR(64)", notNull, indexed, comment("A sequencing platform specific product id. For Illumina, data corresponds to the id_iseq_product column in the iseq_product_metrics table")),
			col("seq_platform_name", "ENUM('Illumina','PacBio','ONT')", notNull, indexed, comment("Name of the sequencing platform used to produce raw data")),
			col("pipeline_name", "VARCHAR(32)", notNull, indexed, comment("The name of the pipeline used to produce the data, values are: npg-prod, npg-prod-alt-process, cellranger, spaceranger, ncov2019-artic-nf")),
			col("irods_root_collection", "VARCHAR(255)", notNull, comment("Path to the product root collection in iRODS")),
			col("created", typeTimestamp, defaults(currentTimestamp), comment("Datetime this record was created")),
			col("last_changed", typeTimestamp, defaults(onUpdateTimestamp), comment("Datetime this record was created or changed")),
			col("irods_data_relative_path", "VARCHAR(255)", comment("The path, relative to the root collection, to the most used data location")),
			col("irods_secondary_data_relative_path", "VARCHAR(255)", comment("The path, relative to the root collection, to a useful data location")),
		},
		PrimaryKey: []string{"id_seq_product_irods_locations_tmp"},
	}
}
